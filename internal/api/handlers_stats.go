package api

import (
	"net/http"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.LLMStats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"provider":        s.cfg.LLMProvider,
		"model":           s.cfg.LLMModel,
		"stats":           s.deps.LLMStats.Snapshot(),
		"queue_depth":     s.queueDepth(),
		"active_sessions": s.sessions.count(),
	})
}

func (s *Server) queueDepth() int {
	if s.deps.Orchestrator == nil {
		return 0
	}
	return s.deps.Orchestrator.QueueDepth()
}
