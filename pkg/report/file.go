package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/IlikeChooros/go-hdagger/pkg/dagger"
)

// Writer appends one line per round: the discounted return, followed by the
// log-likelihood and the reward error when rewards are learned
type Writer struct {
	w           *bufio.Writer
	closer      io.Closer
	name        string
	learnReward bool
}

func NewWriter(w io.Writer, learnReward bool) *Writer {
	return &Writer{w: bufio.NewWriter(w), learnReward: learnReward}
}

// Creates 'dir' if needed and opens the file named after the run
func CreateFile(dir string, info RunInfo) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create dir: %w", err)
	}
	name := filepath.Join(dir, info.FileName())
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("report: create file: %w", err)
	}
	w := NewWriter(f, info.LearnReward)
	w.closer = f
	w.name = name
	return w, nil
}

// Path of the output file, empty for plain writers
func (w *Writer) Name() string {
	return w.name
}

// Lines are flushed right away so partial runs can be inspected
func (w *Writer) WriteRound(res dagger.RoundResult) error {
	if w.learnReward {
		fmt.Fprintf(w.w, "%g %g %g\n", res.Return, res.LogLikelihood, res.RewardMSE)
	} else {
		fmt.Fprintf(w.w, "%g\n", res.Return)
	}
	return w.w.Flush()
}

// Benchmark policies report a single return
func (w *Writer) WriteReturn(ret float64) error {
	fmt.Fprintf(w.w, "%g\n", ret)
	return w.w.Flush()
}

func (w *Writer) Close() error {
	err := w.w.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
