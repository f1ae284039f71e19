package compare

// Classify returns the status of a (source, target) pair. ok is false when
// neither side is present; such cells are never materialized. Null counts as
// absent, and values compare by their parsed encoding without coercion.
func Classify(source, target Value) (status Status, ok bool) {
	sp, tp := source.Present(), target.Present()
	switch {
	case sp && tp:
		if source.Equal(target) {
			return StatusMatch, true
		}
		return StatusDifferent, true
	case sp:
		return StatusSourceOnly, true
	case tp:
		return StatusTargetOnly, true
	default:
		return "", false
	}
}
