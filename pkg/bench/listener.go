package bench

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

type ListenerLike interface {
	OnStart(policy string, episodes int)
	OnFinishedEpisode(info EpisodeInfo)
	OnEnd(summary Summary)
}

// Does nothing
type DefaultListener struct{}

func (DefaultListener) OnStart(string, int)           {}
func (DefaultListener) OnFinishedEpisode(EpisodeInfo) {}
func (DefaultListener) OnEnd(Summary)                 {}

// Prints one styled line per episode and a summary
type ProgressListener struct {
	out *termenv.Output
}

// Colors are picked from the terminal behind 'w', plain text if there is none
func NewProgressListener(w io.Writer, opts ...termenv.OutputOption) *ProgressListener {
	return &ProgressListener{out: termenv.NewOutput(w, opts...)}
}

func (p *ProgressListener) OnStart(policy string, episodes int) {
	title := p.out.String(fmt.Sprintf("%s: %d episodes", policy, episodes)).Bold()
	fmt.Fprintln(p.out, title)
}

func (p *ProgressListener) OnFinishedEpisode(info EpisodeInfo) {
	ret := p.out.String(fmt.Sprintf("%8.3f", info.Return))
	switch {
	case info.Return > 0:
		ret = ret.Foreground(p.out.Color("2"))
	case info.Return < 0:
		ret = ret.Foreground(p.out.Color("1"))
	}
	fmt.Fprintf(p.out, "  episode %d/%d return %s\n", info.Episode+1, info.Episodes, ret)
}

func (p *ProgressListener) OnEnd(summary Summary) {
	line := p.out.String(fmt.Sprintf("%s: mean %.3f, stddev %.3f", summary.Policy, summary.Mean, summary.StdDev))
	fmt.Fprintln(p.out, line.Bold().Underline())
}
