// Command puzzlescan runs the piece scanner on a still image and
// prints the classification results.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"puzzle-scanner/config"
	"puzzle-scanner/internal/classify"
	"puzzle-scanner/internal/frame"
	"puzzle-scanner/internal/scan"
	"puzzle-scanner/internal/sensitivity"
	"puzzle-scanner/internal/version"
)

func main() {
	imagePath := flag.String("image", "", "Path to a photo of scattered pieces (PNG, JPEG, or TIFF)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	level := flag.String("sensitivity", "", "Detection sensitivity: low, medium, or high (overrides SCAN_SENSITIVITY)")
	width := flag.Int("width", 0, "Processing width in pixels (overrides SCAN_WIDTH)")
	annotate := flag.String("annotate", "", "Write an annotated copy of the image to this path")
	cutouts := flag.String("cutouts", "", "Write per-piece cutout previews into this directory")
	hide := flag.String("hide", "", "Comma-separated categories to hide from the table (corner,edge,nonEdge,unknown)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("puzzlescan %s\n", version.String())
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: puzzlescan -image <path> [-sensitivity low|medium|high] [-width 640] [-annotate out.png] [-cutouts dir]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad configuration: %v\n", err)
		os.Exit(1)
	}
	if *level != "" {
		l, err := sensitivity.ParseLevel(*level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Bad sensitivity: %v\n", err)
			os.Exit(1)
		}
		cfg.Sensitivity = l
	}
	if *width > 0 {
		cfg.TargetWidth = *width
	}

	f, err := frame.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded image: %dx%d pixels\n", f.Width, f.Height)

	sc := cfg.ScanConfig()
	// Stills go through the capture path; use the configured width for
	// both so -width behaves as expected.
	sc.CaptureWidth = sc.TargetWidth

	session := scan.NewSession(sc)
	defer session.Close()

	params := session.Params()
	fmt.Printf("Sensitivity: %s\n", cfg.Sensitivity)
	fmt.Printf("  Blur kernel: %d  Morph kernel: %d\n", params.BlurKernelSize, params.MorphKernelSize)
	fmt.Printf("  Min area ratio: %.4f  Min solidity: %.2f  Max aspect: %.1f\n",
		params.MinAreaRatio, params.MinSolidity, params.MaxAspectRatio)
	fmt.Printf("  Canny: %.0f-%.0f  Min line length ratio: %.2f\n",
		params.CannyLow, params.CannyHigh, params.MinLineLengthRatio)

	result, fresh, err := session.Capture(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}
	if !fresh {
		fmt.Fprintln(os.Stderr, "Scan superseded")
		os.Exit(1)
	}

	printGuidance(result)
	printPieces(result, parseHidden(*hide))
	printCounts(result)

	if *annotate != "" {
		if err := writeAnnotated(*annotate, f, result); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write annotated image: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Annotated image written to %s\n", *annotate)
	}
	if *cutouts != "" {
		n, err := writeCutouts(*cutouts, result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write cutouts: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%d cutout previews written to %s\n", n, *cutouts)
	}
}

func parseHidden(s string) scan.Visibility {
	if s == "" {
		return nil
	}
	v := scan.Visibility{}
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(name) {
		case "corner":
			v[classify.Corner] = false
		case "edge":
			v[classify.Edge] = false
		case "nonEdge":
			v[classify.NonEdge] = false
		case "unknown":
			v[classify.Unknown] = false
		}
	}
	return v
}

func printGuidance(result *scan.Result) {
	fmt.Printf("\nFrame quality: %s\n", result.Quality.Overall)
	for _, g := range result.Quality.Items {
		fmt.Printf("  [%s] %s: %s\n", g.Severity, g.Code, g.Message)
	}
}

func printPieces(result *scan.Result, v scan.Visibility) {
	visible := scan.FilterVisible(result.Pieces, v)
	fmt.Printf("\nDetected %d pieces (%d shown):\n", len(result.Pieces), len(visible))
	fmt.Printf("%-4s %-8s %8s %8s %8s %8s %10s %12s\n",
		"ID", "Kind", "X", "Y", "W", "H", "Solidity", "Confidence")
	fmt.Println(strings.Repeat("-", 72))
	for _, p := range visible {
		fmt.Printf("%-4d %-8s %8d %8d %8d %8d %10.2f %12.2f\n",
			p.ID, p.Classification.Kind, p.Box.X, p.Box.Y, p.Box.Width, p.Box.Height,
			p.Solidity, p.Classification.Confidence)
	}
}

func printCounts(result *scan.Result) {
	c := result.Counts
	fmt.Printf("\nCounts: %d corners, %d edges, %d interior, %d unknown (%d total)\n",
		c.Corners, c.Edges, c.NonEdge, c.Unknown, c.Total)
	if result.Overlap.OverlappingPairs > 0 {
		fmt.Printf("Overlap: %d pairs, worst %.0f%%\n",
			result.Overlap.OverlappingPairs, result.Overlap.MaxOverlapFraction*100)
	}
}

// kindColors are the overlay colors per category, BGR.
var kindColors = map[classify.Kind]color.RGBA{
	classify.Corner:  {R: 40, G: 200, B: 40, A: 255},
	classify.Edge:    {R: 40, G: 120, B: 230, A: 255},
	classify.NonEdge: {R: 230, G: 160, B: 30, A: 255},
	classify.Unknown: {R: 150, G: 150, B: 150, A: 255},
}

func writeAnnotated(path string, f frame.Frame, result *scan.Result) error {
	mat, err := f.ToMat()
	if err != nil {
		return err
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBAToBGR)

	for _, p := range result.Pieces {
		c := kindColors[p.Classification.Kind]
		r := p.Box.Rect()
		gocv.Rectangle(&bgr, image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height), c, 2)
		gocv.PutText(&bgr, fmt.Sprintf("%d %s", p.ID, p.Classification.Kind),
			image.Pt(r.X, r.Y-4), gocv.FontHersheyPlain, 1.0, c, 1)
	}

	if ok := gocv.IMWrite(path, bgr); !ok {
		return fmt.Errorf("imwrite %s failed", path)
	}
	return nil
}

func writeCutouts(dir string, result *scan.Result) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	n := 0
	for _, p := range result.Pieces {
		if p.Cutout == nil {
			continue
		}
		preview := frame.ShrinkPreview(p.Cutout, 160)
		name := filepath.Join(dir, fmt.Sprintf("piece-%03d-%s.png", p.ID, p.Classification.Kind))
		out, err := os.Create(name)
		if err != nil {
			return n, err
		}
		if err := png.Encode(out, preview); err != nil {
			out.Close()
			return n, err
		}
		if err := out.Close(); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
