package dataset

// MapRange linearly rescales value from [inMin, inMax] to
// [outMin, outMax], clamping value to the input range first.
func MapRange(outMin, outMax, inMin, inMax, value float64) float64 {
	if inMax == inMin {
		return outMin
	}
	if value <= inMin {
		return outMin
	}
	if value >= inMax {
		return outMax
	}
	return outMin + (value-inMin)*(outMax-outMin)/(inMax-inMin)
}

// NormalizeControl maps a recorded control value from [-1, 1] into the
// [0, 1] target space of the sigmoid output layer.
func NormalizeControl(v float64) float64 {
	return MapRange(0, 1, -1, 1, v)
}

// DenormalizeControl is the inverse: a network output in [0, 1] back to
// a [-1, 1] steering or throttle command.
func DenormalizeControl(v float64) float64 {
	return MapRange(-1, 1, 0, 1, v)
}
