package masking

// Service applies the compiled built-in patterns to free text and to the
// string leaves of an entity_data snapshot tree. Created once at startup
// (stateless after compilation), grounded on the teacher's MaskingService
// but narrowed from a per-MCP-server pattern-group resolver down to one
// fixed built-in set, since this domain has no per-collaborator masking
// configuration to resolve.
type Service struct {
	patterns []Pattern
}

// NewService compiles the built-in pattern set.
func NewService() *Service {
	return &Service{patterns: builtinPatterns()}
}

// MaskText applies every pattern to s in order.
func (s *Service) MaskText(text string) string {
	masked := text
	for _, p := range s.patterns {
		masked = p.Regex.ReplaceAllString(masked, p.Replacement)
	}
	return masked
}

// MaskEntityData returns a copy of data with every string leaf passed
// through MaskText, recursing through nested maps and slices. Used before
// an entity_data snapshot is written to the audit log (§3.1) or published
// to pub/sub (§6.2), so that pasted secrets or emails in a task name or
// brain dump note never leave the write path unmasked.
func (s *Service) MaskEntityData(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = s.maskValue(v)
	}
	return out
}

func (s *Service) maskValue(v interface{}) interface{} {
	switch x := v.(type) {
	case string:
		return s.MaskText(x)
	case map[string]interface{}:
		return s.MaskEntityData(x)
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = s.maskValue(e)
		}
		return out
	default:
		return v
	}
}
