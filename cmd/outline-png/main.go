// Command outline-png renders outlined cubes with the software backend and
// writes the frame to a PNG file.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/gekko3d/outline"
	"github.com/gekko3d/outline/rt/soft"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

var (
	widthFlag    = flag.Int("w", 640, "image width in pixels")
	heightFlag   = flag.Int("h", 360, "image height in pixels")
	outFlag      = flag.String("o", "outline.png", "output PNG path")
	colorFlag    = flag.String("color", "b4a2c8", "outline color as rrggbb or rrggbbaa")
	lineFlag     = flag.Float64("line", 12, "outline width in pixels")
	cubesFlag    = flag.Int("cubes", 3, "number of cubes in a row")
	knockoutFlag = flag.Bool("knockout", false, "keep the outline off the silhouette interior")
	fixedFlag    = flag.Int("fixed-steps", -1, "start the jump steps at 2^n, or at the first step the size needs if that is larger")
	workersFlag  = flag.Int("workers", 0, "worker goroutines per pass (0 = GOMAXPROCS)")
	debugFlag    = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()
	log := outline.NewDefaultLogger("outline-png", *debugFlag)
	if err := run(log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(log outline.Logger) error {
	c, err := outline.ColorFromHex(*colorFlag)
	if err != nil {
		return err
	}
	cfg := outline.DefaultConfig().
		WithStyle(outline.Style{Color: c, Width: float32(*lineFlag)}).
		WithWorkers(*workersFlag).
		WithLogger(log)
	cfg.KnockoutInterior = *knockoutFlag
	if *fixedFlag >= 0 {
		cfg = cfg.WithStepPolicy(outline.StepsFixed(*fixedFlag))
	}

	r, err := soft.NewRenderer(cfg)
	if err != nil {
		return err
	}
	if err := r.Prepare(*widthFlag, *heightFlag); err != nil {
		return err
	}

	view := sceneView(*widthFlag, *heightFlag, *cubesFlag)
	target := image.NewRGBA(image.Rect(0, 0, *widthFlag, *heightFlag))
	draw.Draw(target, target.Bounds(), &image.Uniform{C: color.RGBA{R: 0x20, G: 0x22, B: 0x28, A: 0xff}}, image.Point{}, draw.Src)

	res, err := r.Render(view, target)
	if err != nil {
		return err
	}
	if res.Skipped {
		return fmt.Errorf("frame skipped at %s", res.SkippedAt)
	}
	log.Infof("rendered %d outlined items at %s, %d seeded pixels", len(view.Visible()), r.Dimensions(), r.Seeds().Seeded())

	f, err := os.Create(*outFlag)
	if err != nil {
		return err
	}
	if err := png.Encode(f, target); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", *outFlag, err)
	}
	return f.Close()
}

// sceneView lines up n tilted cubes in front of a perspective camera.
func sceneView(w, h, n int) *outline.View {
	cube := outline.Cube()
	items := make([]outline.DrawItem, 0, n)
	for i := 0; i < n; i++ {
		t := outline.NewTransform()
		t.Position = mgl32.Vec3{(float32(i) - float32(n-1)/2) * 2.2, 0, -8}
		t.Rotate(mgl32.DegToRad(25+float32(i)*20), mgl32.Vec3{0, 1, 0}).
			Rotate(mgl32.DegToRad(30), mgl32.Vec3{1, 0, 0})
		items = append(items, outline.NewDrawItem(cube, t))
	}
	return &outline.View{
		Name: "main",
		ViewMatrix: mgl32.LookAtV(
			mgl32.Vec3{0, 1.5, 0},
			mgl32.Vec3{0, 0, -8},
			mgl32.Vec3{0, 1, 0},
		),
		Projection: outline.PerspectiveZO(mgl32.DegToRad(60), float32(w)/float32(h), 0.1, 100),
		Items:      items,
	}
}
