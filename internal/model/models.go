package model

// All lists every persisted table in migration order.
func All() []interface{} {
	return []interface{}{
		&AssessmentResult{},
		&Reflection{},
	}
}
