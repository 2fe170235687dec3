package execgraph

import "github.com/cubedaw/engine/internal/buffer"

// smoothing is the per-sample interpolation factor from §4.G
// ("currently 0.005 per sample") used to glide a bias or multiplier
// toward its raw target and eliminate zipper noise.
const smoothing = 0.005

// Interpolated is a value whose rendered output chases a target (the
// "raw" value) by a fixed step each sample, carrying its current
// position across frames so a parameter change never causes a click.
type Interpolated struct {
	raw     float32
	current float32
}

// SetRaw updates the interpolation target; the rendered value will
// glide toward it sample-by-sample rather than jumping immediately.
func (v *Interpolated) SetRaw(raw float32) { v.raw = raw }

// Raw returns the current target value.
func (v *Interpolated) Raw() float32 { return v.raw }

// step advances current one sample toward raw and returns it.
func (v *Interpolated) step() float32 {
	v.current += (v.raw - v.current) * smoothing
	return v.current
}

// FillBuffer overwrites buf with buf.Len() successive interpolated
// samples chasing v's raw value, continuing from wherever the
// interpolation last left off.
func (v *Interpolated) FillBuffer(buf *buffer.Buffer) {
	samples := buf.Samples()
	for i := range samples {
		samples[i] = v.step()
	}
}

// macInto multiply-accumulates src*v (v stepped per sample) into dst:
// dst[i] += src[i] * v.step(). Used for a cable's interpolated
// multiplier during input summation.
func (v *Interpolated) macInto(dst, src *buffer.Buffer) {
	dstSamples, srcSamples := dst.Samples(), src.Samples()
	for i := range dstSamples {
		dstSamples[i] += srcSamples[i] * v.step()
	}
}
