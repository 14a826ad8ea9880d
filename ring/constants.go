package ring

const (
	// MaxBitsInWord is the maximum bit-size of a modulus.
	MaxBitsInWord = 61

	// MaxLogStep is the maximum number of bits of a decomposition base.
	MaxLogStep = 60

	// maxGeneratorAttempts bounds the random search of FindGenerator.
	maxGeneratorAttempts = 1 << 12
)

// Format is the representation domain of a Poly.
type Format uint8

const (
	// Coefficient is the coefficient representation.
	Coefficient = Format(0)
	// Evaluation is the evaluation (NTT) representation.
	Evaluation = Format(1)
)

func (f Format) String() string {
	switch f {
	case Coefficient:
		return "Coefficient"
	case Evaluation:
		return "Evaluation"
	default:
		return "Format(?)"
	}
}
