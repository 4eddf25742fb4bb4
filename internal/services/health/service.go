package health

// Service encapsulates health-related checks.
type Service struct {
	llmConfigured bool
}

// NewService constructs a new health service.
func NewService(llmConfigured bool) *Service {
	return &Service{llmConfigured: llmConfigured}
}

// Status returns a simple health payload including whether analysis is
// available on this deployment.
func (s *Service) Status() map[string]bool {
	return map[string]bool{
		"ok":             true,
		"llm_configured": s.llmConfigured,
	}
}
