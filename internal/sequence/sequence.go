// Package sequence orders frames for playback.
package sequence

// Assemble returns the playback order. With loopReverse the frames play
// forward and then backward, skipping the first and last frame on the way
// back so neither is shown twice in a row. Fewer than three frames have no
// inner frames, so the backward pass is empty. The input is never modified.
func Assemble(frames []string, loopReverse bool) []string {
	out := make([]string, len(frames), 2*len(frames))
	copy(out, frames)

	if !loopReverse {
		return out
	}

	for i := len(frames) - 2; i >= 1; i-- {
		out = append(out, frames[i])
	}
	return out
}
