// Package director runs the icon promo sequence on a scene.
//
// The sequence has two branches. The glyph branch traces the vector asset inside the brand square.
// The placeholder branch, taken when the asset path does not resolve to a file, spells "Dreams" instead.
// Both end with the wordmark written under the icon.
package director

import (
	"context"
	"fmt"
	"log"

	"github.com/ivlev/dreams-promo/internal/analyzer"
	"github.com/ivlev/dreams-promo/internal/config"
	"github.com/ivlev/dreams-promo/internal/effects"
	"github.com/ivlev/dreams-promo/internal/geom"
	"github.com/ivlev/dreams-promo/internal/scene"
	"github.com/ivlev/dreams-promo/internal/source"
	"github.com/lucasb-eyer/go-colorful"
)

// Wordmark is the text written under the icon on every branch.
const Wordmark = "Dreams"

// Branch names.
const (
	BranchGlyph       = "glyph"
	BranchPlaceholder = "placeholder"
)

// pointsPerEm converts a font size in points to an em size in scene units.
const pointsPerEm = 72.0

// QR end card layout in scene units.
const (
	qrSize   = 1.0
	qrBuff   = 0.2
	qrFadeIn = 0.6
)

var white = colorful.Color{R: 1, G: 1, B: 1}

// Result describes what a run left on the scene.
type Result struct {
	Branch   string
	Square   *scene.Element
	Glyph    *scene.Element
	Wordmark *scene.Element
	QR       *scene.Element
	// Suspicious is set when the discarded sub-paths did not enclose the glyph,
	// or when no glyph was detected on a raster asset.
	Suspicious bool
}

// Sequencer drives the promo sequence.
type Sequencer struct {
	cfg      *config.Config
	loader   source.Loader
	bold     *source.FontShaper
	regular  *source.FontShaper
	detector analyzer.Detector
}

// New creates a sequencer. bold sets the wordmark, regular the placeholder title; regular may be nil to reuse bold.
func New(cfg *config.Config, loader source.Loader, bold, regular *source.FontShaper) *Sequencer {
	if regular == nil {
		regular = bold
	}
	return &Sequencer{cfg: cfg, loader: loader, bold: bold, regular: regular, detector: analyzer.NewContrastDetector()}
}

// Run plays the whole sequence on s. A missing asset selects the placeholder branch and is never loaded.
func (q *Sequencer) Run(ctx context.Context, s *scene.Scene) (*Result, error) {
	if !q.loader.Exists(q.cfg.AssetPath) {
		log.Printf("[!] Ассет %q не найден, используется заставка с текстом", q.cfg.AssetPath)
		return q.runPlaceholder(ctx, s)
	}
	return q.runGlyph(ctx, s)
}

// intro fades in the brand square and grows it.
func (q *Sequencer) intro(ctx context.Context, s *scene.Scene, seq config.Sequence) (*scene.Element, error) {
	d := seq.Durations
	if err := s.Wait(ctx, d.IntroWait); err != nil {
		return nil, err
	}

	square := scene.NewShape("square",
		geom.Shape{geom.RoundedRect(geom.Point{}, seq.SquareSize, seq.SquareSize, seq.CornerRadius)},
		scene.Filled(q.cfg.Brand()))
	square.Glow = q.cfg.GlowSigma > 0

	if err := s.Play(ctx, effects.Smooth(), effects.FadeIn(d.FadeIn, []*scene.Element{square})); err != nil {
		return nil, err
	}
	if err := s.Play(ctx, effects.Smooth(), effects.ScaleBy(d.Grow, seq.ScaleFactor, []*scene.Element{square})); err != nil {
		return nil, err
	}
	return square, s.Wait(ctx, d.PreTraceWait)
}

func (q *Sequencer) runGlyph(ctx context.Context, s *scene.Scene) (*Result, error) {
	seq := q.cfg.Glyph
	d := seq.Durations
	res := &Result{Branch: BranchGlyph}

	square, err := q.intro(ctx, s, seq)
	if err != nil {
		return nil, err
	}
	res.Square = square

	asset, err := q.loader.Load(q.cfg.AssetPath)
	if err != nil {
		return nil, fmt.Errorf("загрузка ассета: %w", err)
	}

	if asset.Vector() {
		shape, suspicious := ExtractGlyph(asset.Paths, q.cfg.GlyphSkip)
		if suspicious {
			log.Printf("[!] Отброшенный контур %s не охватывает глиф, проверьте glyph_skip", asset.Path)
		}
		res.Suspicious = suspicious
		shape = PlaceGlyph(asset.Paths, shape, seq, square.Bounds().Center())

		res.Glyph, err = q.traceGlyph(ctx, s, shape, seq)
		if err != nil {
			return nil, err
		}
	} else {
		// Растровый ассет нельзя обвести, поэтому он просто проявляется.
		img, found, err := analyzer.ExtractGlyph(asset.Raster, q.detector)
		if err != nil {
			return nil, fmt.Errorf("анализ растра: %w", err)
		}
		if !found {
			log.Printf("[!] На растре %s не найден глиф, используется вся страница", asset.Path)
		}
		res.Suspicious = !found
		glyph := scene.NewRaster("glyph", img, rasterBox(img.Bounds().Size(), seq, square.Bounds().Center()))
		if err := s.Play(ctx, effects.Smooth(), effects.FadeIn(d.Trace, []*scene.Element{glyph})); err != nil {
			return nil, err
		}
		res.Glyph = glyph
	}

	if err := s.Wait(ctx, d.Hold); err != nil {
		return nil, err
	}
	if err := q.outro(ctx, s, seq, res); err != nil {
		return nil, err
	}
	return res, nil
}

// traceGlyph draws the glyph outline and restyles it per variant.
func (q *Sequencer) traceGlyph(ctx context.Context, s *scene.Scene, shape geom.Shape, seq config.Sequence) (*scene.Element, error) {
	d := seq.Durations
	thin := scene.NewShape("glyph", shape, scene.Outlined(white, seq.ThinStroke))

	if err := s.Play(ctx, effects.Smooth(), effects.DrawBorderThenFill(d.Trace, thin, effects.Outline(thin.Style, seq.ThinStroke))); err != nil {
		return nil, err
	}
	if err := s.Wait(ctx, d.PostTraceWait); err != nil {
		return nil, err
	}

	if q.cfg.Variant == config.VariantFill {
		filled := scene.NewShape("glyph_filled", shape, scene.Filled(white))
		err := s.Play(ctx, effects.Smooth(),
			effects.FadeIn(d.Restyle, []*scene.Element{filled}),
			effects.FadeOut(d.RestyleFade, []*scene.Element{thin}))
		return filled, err
	}

	thick := thin.Copy()
	thick.Name = "glyph_thick"
	thick.Style.StrokeWidth = seq.ThickStroke
	return thin, s.Play(ctx, effects.Smooth(), effects.Transform(d.Restyle, thin, thick))
}

func (q *Sequencer) runPlaceholder(ctx context.Context, s *scene.Scene) (*Result, error) {
	seq := q.cfg.Placeholder
	d := seq.Durations
	res := &Result{Branch: BranchPlaceholder}

	square, err := q.intro(ctx, s, seq)
	if err != nil {
		return nil, err
	}
	res.Square = square

	glyphs, err := q.regular.Outline(Wordmark, seq.TitleSize/pointsPerEm)
	if err != nil {
		return nil, fmt.Errorf("текст заставки: %w", err)
	}
	glyphs = glyphs.MoveTo(square.Bounds().Center())

	outline := scene.NewText("title", Wordmark, glyphs, scene.Outlined(white, seq.ThinStroke))
	if err := s.Play(ctx, effects.Smooth(), effects.DrawBorderThenFill(d.Trace, outline, effects.Outline(outline.Style, seq.ThinStroke))); err != nil {
		return nil, err
	}
	if err := s.Wait(ctx, d.PostTraceWait); err != nil {
		return nil, err
	}

	filled := scene.NewText("title_filled", Wordmark, glyphs, scene.Filled(white))
	if err := s.Play(ctx, effects.Smooth(),
		effects.FadeIn(d.Restyle, []*scene.Element{filled}),
		effects.FadeOut(d.RestyleFade, []*scene.Element{outline})); err != nil {
		return nil, err
	}
	res.Glyph = filled

	if err := s.Wait(ctx, d.Hold); err != nil {
		return nil, err
	}
	if err := q.outro(ctx, s, seq, res); err != nil {
		return nil, err
	}
	return res, nil
}

// outro lifts the icon, writes the wordmark, then optionally shrinks and fades everything.
func (q *Sequencer) outro(ctx context.Context, s *scene.Scene, seq config.Sequence, res *Result) error {
	d := seq.Durations
	icon := []*scene.Element{res.Square, res.Glyph}

	glyphs, err := q.bold.Outline(Wordmark, seq.WordmarkSize/pointsPerEm)
	if err != nil {
		return fmt.Errorf("текст логотипа: %w", err)
	}
	wordmark := scene.NewText("wordmark", Wordmark, glyphs, scene.Filled(white))
	// Размещается до подъема иконки, как и в исходной раскладке.
	scene.NextTo(wordmark, scene.Bounds(icon...), geom.Down, seq.WordmarkBuff)
	res.Wordmark = wordmark

	if err := s.Play(ctx, effects.Smooth(), effects.Shift(d.Lift, geom.Up.Mul(seq.Lift), icon)); err != nil {
		return err
	}
	if err := s.Play(ctx, effects.Smooth(), effects.Write(d.Write, wordmark)); err != nil {
		return err
	}

	all := append(icon, wordmark)
	if q.cfg.QRURL != "" {
		qr, err := q.qrCard(wordmark)
		if err != nil {
			return err
		}
		if err := s.Play(ctx, effects.Smooth(), effects.FadeIn(qrFadeIn, []*scene.Element{qr})); err != nil {
			return err
		}
		res.QR = qr
		all = append(all, qr)
	}

	if err := s.Wait(ctx, d.PostWrite); err != nil {
		return err
	}
	if q.cfg.OutroEnabled() {
		if err := s.Play(ctx, effects.Smooth(), effects.ScaleBy(d.OutroScale, seq.OutroScale, all)); err != nil {
			return err
		}
		if err := s.Play(ctx, effects.Smooth(), effects.FadeOut(d.OutroFade, all)); err != nil {
			return err
		}
	}
	return s.Wait(ctx, d.FinalWait)
}

func (q *Sequencer) qrCard(wordmark *scene.Element) (*scene.Element, error) {
	px := int(qrSize * q.cfg.PixelsPerUnit())
	img, err := source.QRCode(q.cfg.QRURL, px)
	if err != nil {
		return nil, fmt.Errorf("QR-код: %w", err)
	}
	box := geom.Rect{Max: geom.Point{X: qrSize, Y: qrSize}}
	qr := scene.NewRaster("qr", img, box)
	scene.NextTo(qr, wordmark.Bounds(), geom.Down, qrBuff)
	return qr, nil
}
