package pipeline

import "github.com/d-dboss/Worksite-Appendix-Creator/pkg/types"

type ProgressCallback func(update ProgressUpdate)

// ProgressUpdate is one event on the progress stream. "photo" updates
// carry the resolved caption and the per-photo failure flag so a live
// view can show results as they land, not just a counter.
type ProgressUpdate struct {
	Type     string            `json:"type"`
	Message  string            `json:"message,omitempty"`
	Current  int               `json:"current,omitempty"`
	Total    int               `json:"total,omitempty"`
	Filename string            `json:"filename,omitempty"`
	Caption  string            `json:"caption,omitempty"`
	Failed   bool              `json:"failed,omitempty"`
	Summary  *types.RunSummary `json:"summary,omitempty"`
	Error    string            `json:"error,omitempty"`
}
