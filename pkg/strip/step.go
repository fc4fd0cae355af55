package strip

// StepLinear moves current toward target by at most step. When current is
// within step of target it snaps to target exactly.
func StepLinear(current, target, step float64) float64 {
	switch {
	case current < target:
		if current < target-step {
			return current + step
		}
	case current > target:
		if current > target+step {
			return current - step
		}
	}
	return target
}

// StepCircular moves current toward target on a circle of width modulus,
// taking the shorter way around. It snaps to target when within step and
// always returns a value in [0, modulus).
//
// When both directions are exactly the same length it steps backward.
func StepCircular(current, target, modulus, step float64) float64 {
	if current == target {
		return target
	}

	forward := target - current
	if current > target {
		forward = modulus - current + target
	}
	backward := current - target
	if current < target {
		backward = current + modulus - target
	}

	if forward < backward {
		if forward > step {
			return wrap(current+step, modulus)
		}
	} else if backward > step {
		return wrap(current-step, modulus)
	}
	return wrap(target, modulus)
}

func wrap(v, modulus float64) float64 {
	for v < 0 {
		v += modulus
	}
	for v >= modulus {
		v -= modulus
	}
	return v
}
