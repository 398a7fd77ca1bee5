package model

import "time"

// Used when New is called without a random source
var SeedGeneratorFn = func() int64 {
	return time.Now().UnixNano()
}

func SetSeedGeneratorFn(f func() int64) {
	SeedGeneratorFn = f
}
