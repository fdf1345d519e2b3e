package apu

const (
	highPassCoeff = 0.996
	lowPassCoeff  = 0.815
)

// mix combines the five channel outputs using the console's non-linear
// mixing formulas.
func (a *APU) mix() float64 {
	p1 := float64(a.pulse1.output())
	p2 := float64(a.pulse2.output())
	var pulseOut float64
	if p1+p2 > 0 {
		pulseOut = 95.88 / (8128/(p1+p2) + 100)
	}

	tri := float64(a.triangle.output())
	noi := float64(a.noise.output())
	dmc := float64(a.dmc.output())
	tndInput := tri/8227 + noi/12241 + dmc/22638
	var tndOut float64
	if tndInput > 0 {
		tndOut = 159.79 / (100 + 1/tndInput)
	}

	return pulseOut + tndOut
}

// filter applies the single-pole high-pass then low-pass stage and
// clamps to [-1, 1].
func (a *APU) filter(x float64) float64 {
	y := highPassCoeff * (a.hpPrevOut + x - a.hpPrevIn)
	a.hpPrevIn = x
	a.hpPrevOut = y

	a.lpPrevOut += lowPassCoeff * (y - a.lpPrevOut)
	out := a.lpPrevOut

	if out > 1 {
		out = 1
	} else if out < -1 {
		out = -1
	}
	return out
}

// accumulateSample advances the per-cycle sample-rate accumulator and
// emits a filtered PCM sample whenever it crosses the CPU frequency,
// dropping the oldest queued sample when the buffer is full.
func (a *APU) accumulateSample() {
	a.sampleAccumulator += SampleRate
	if a.sampleAccumulator < CPUFrequency {
		return
	}
	a.sampleAccumulator -= CPUFrequency

	sample := a.filter(a.mix())
	if len(a.outputBuffer) >= a.maxBufferLen {
		a.outputBuffer = a.outputBuffer[1:]
	}
	a.outputBuffer = append(a.outputBuffer, float32(sample))
}
