package pix

import "image"

// Otsu finds the threshold that maximizes the between-class variance of the
// image's intensity histogram, separating the two intensity populations of a
// bimodal image. Returns 0 for an empty or perfectly uniform image.
func Otsu(src *image.Gray) uint8 {
	var hist [256]int
	total := len(src.Pix)
	if total == 0 {
		return 0
	}
	for _, v := range src.Pix {
		hist[v]++
	}

	sumAll := 0.0
	for v := 0; v < 256; v++ {
		sumAll += float64(v) * float64(hist[v])
	}

	// Between-class variance is flat across the gap between two well
	// separated populations; ties resolve to the middle of the plateau so
	// the cut lands between the modes.
	bestLo, bestHi := 0, 0
	bestVariance := 0.0
	wBack := 0
	sumBack := 0.0
	for t := 0; t < 256; t++ {
		wBack += hist[t]
		if wBack == 0 {
			continue
		}
		wFore := total - wBack
		if wFore == 0 {
			break
		}
		sumBack += float64(t) * float64(hist[t])
		meanBack := sumBack / float64(wBack)
		meanFore := (sumAll - sumBack) / float64(wFore)
		d := meanBack - meanFore
		variance := float64(wBack) * float64(wFore) * d * d
		if variance > bestVariance {
			bestVariance = variance
			bestLo, bestHi = t, t
		} else if variance == bestVariance && bestHi == t-1 {
			bestHi = t
		}
	}
	return uint8((bestLo + bestHi) / 2)
}
