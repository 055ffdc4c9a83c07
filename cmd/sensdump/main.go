// Command sensdump prints the detection parameters for each
// sensitivity level, for tuning against reference photos.
package main

import (
	"fmt"

	"puzzle-scanner/internal/sensitivity"
)

func main() {
	for _, level := range []sensitivity.Level{sensitivity.Low, sensitivity.Medium, sensitivity.High} {
		p := sensitivity.ToParams(level)
		fmt.Printf("%s:\n", level)
		fmt.Printf("  blur kernel:        %d\n", p.BlurKernelSize)
		fmt.Printf("  morph kernel:       %d\n", p.MorphKernelSize)
		fmt.Printf("  min area ratio:     %.4f\n", p.MinAreaRatio)
		fmt.Printf("  min solidity:       %.2f\n", p.MinSolidity)
		fmt.Printf("  max aspect ratio:   %.1f\n", p.MaxAspectRatio)
		fmt.Printf("  canny thresholds:   %.0f / %.0f\n", p.CannyLow, p.CannyHigh)
		fmt.Printf("  min line ratio:     %.2f\n", p.MinLineLengthRatio)
		fmt.Println()
	}
}
