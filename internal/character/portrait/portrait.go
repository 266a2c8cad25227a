// Package portrait implements C7: assembling an image prompt from a
// character's synthesized description, requesting a portrait from the
// external image provider, persisting the bitmap, and falling back to a
// deterministic placeholder when the provider refuses or fails.
package portrait

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/steve0joo/storymind/internal/clients/openai"
	pkgerrors "github.com/steve0joo/storymind/internal/pkg/errors"
	"github.com/steve0joo/storymind/internal/pkg/logger"
)

// DefaultStyle carries the shared stylistic anchors applied to every
// character so a library's portraits share a visual register.
const DefaultStyle = "realistic portrait, photorealistic, highly detailed, studio lighting, neutral background"

// DefaultAspectRatio is used whenever a caller doesn't specify one.
const DefaultAspectRatio = "1:1"

// Outcome tags whether a Generated Image record came from the external
// provider or the deterministic placeholder path.
type Outcome string

const (
	OutcomeReal        Outcome = "real"
	OutcomePlaceholder Outcome = "placeholder"
)

// CharacterProfile is the descriptor C5/C6 hand off to the image generator.
type CharacterProfile struct {
	Name        string
	Description string
	Seed        uint32
}

// Result is the outcome of one generate() call.
type Result struct {
	Path        string
	Outcome     Outcome
	DurationMS  int64
	Prompt      string
	AspectRatio string
	FailureNote string
}

// ImageClient is the subset of the LLM client's image surface the generator
// needs.
type ImageClient interface {
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (openai.ImageGeneration, error)
}

// Generator produces portraits, preferring the external provider and
// degrading to a deterministic placeholder on provider refusal, quota
// exhaustion, content filtering, or transport failure.
type Generator struct {
	client    ImageClient
	imageDir  string
	log       *logger.Logger
	face      font.Face
	smallFace font.Face
}

// NewGenerator builds a Generator writing portraits under imageDir. If
// fontPath is empty or unreadable, a built-in bitmap font is used so
// placeholder rendering never depends on external font files being present.
func NewGenerator(client ImageClient, imageDir string, fontPath string, log *logger.Logger) (*Generator, error) {
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	face, smallFace := loadFontFaces(fontPath)

	return &Generator{
		client:    client,
		imageDir:  imageDir,
		log:       log.With("component", "PortraitGenerator"),
		face:      face,
		smallFace: smallFace,
	}, nil
}

func loadFontFaces(fontPath string) (font.Face, font.Face) {
	fontPath = strings.TrimSpace(fontPath)
	if fontPath == "" {
		return basicfont.Face7x13, basicfont.Face7x13
	}
	raw, err := os.ReadFile(fontPath)
	if err != nil {
		return basicfont.Face7x13, basicfont.Face7x13
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return basicfont.Face7x13, basicfont.Face7x13
	}
	large := truetype.NewFace(parsed, &truetype.Options{Size: 120, DPI: 72, Hinting: font.HintingNone})
	small := truetype.NewFace(parsed, &truetype.Options{Size: 24, DPI: 72, Hinting: font.HintingNone})
	return large, small
}

// Generate assembles the prompt, attempts the external provider, and falls
// back to a deterministic placeholder on any failure.
func (g *Generator) Generate(ctx context.Context, profile CharacterProfile, style, aspectRatio string) Result {
	if strings.TrimSpace(style) == "" {
		style = DefaultStyle
	}
	if strings.TrimSpace(aspectRatio) == "" {
		aspectRatio = DefaultAspectRatio
	}
	prompt := assemblePrompt(profile.Description, style, profile.Seed)
	path := filePath(g.imageDir, profile.Name, profile.Seed)

	start := time.Now()

	generation, err := g.client.GenerateImage(ctx, prompt, aspectRatio)
	if err == nil && len(generation.Bytes) > 0 {
		if writeErr := os.WriteFile(path, generation.Bytes, 0o644); writeErr == nil {
			return Result{
				Path:        path,
				Outcome:     OutcomeReal,
				DurationMS:  time.Since(start).Milliseconds(),
				Prompt:      prompt,
				AspectRatio: aspectRatio,
			}
		} else {
			err = writeErr
		}
	}

	if g.log != nil {
		g.log.Warn("falling back to placeholder portrait",
			"character", profile.Name, "error", errString(err), "kind", kindString(err))
	}

	if placeholderErr := g.writePlaceholder(path, profile); placeholderErr != nil {
		return Result{
			Path:        path,
			Outcome:     OutcomePlaceholder,
			DurationMS:  time.Since(start).Milliseconds(),
			Prompt:      prompt,
			AspectRatio: aspectRatio,
			FailureNote: placeholderErr.Error(),
		}
	}

	return Result{
		Path:        path,
		Outcome:     OutcomePlaceholder,
		DurationMS:  time.Since(start).Milliseconds(),
		Prompt:      prompt,
		AspectRatio: aspectRatio,
		FailureNote: errString(err),
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// kindString reports the taxonomy kind err was classified under, or
// "unclassified" when no sentinel matched (plain transport failures the
// client didn't wrap, for instance).
func kindString(err error) string {
	if err == nil {
		return ""
	}
	if kind := pkgerrors.Kind(err); kind != nil {
		return kind.Error()
	}
	return "unclassified"
}

// assemblePrompt builds "<description>, <style> [ID: <seed>]". The
// bracketed seed token anchors the model toward deterministic output. The
// seed reaches the provider only as this prompt text; ImageClient sends no
// numeric seed parameter.
func assemblePrompt(description, style string, seed uint32) string {
	return fmt.Sprintf("%s, %s [ID: %d]", strings.TrimSpace(description), strings.TrimSpace(style), seed)
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases a name, collapses whitespace and punctuation runs into
// single hyphens, and trims leading/trailing hyphens.
func Slug(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	slug := nonAlphanumeric.ReplaceAllString(lower, "-")
	return strings.Trim(slug, "-")
}

// filePath is the deterministic, overwrite-on-regenerate path for a
// character's current portrait.
func filePath(imageDir, name string, seed uint32) string {
	return filepath.Join(imageDir, fmt.Sprintf("%s_%d.png", Slug(name), seed))
}

// writePlaceholder renders a solid seed-derived background with centered
// initials and a "PLACEHOLDER" footer label, using the same deterministic
// filename layout as a real portrait so downstream lookups are unaffected
// by generation outcome.
func (g *Generator) writePlaceholder(path string, profile CharacterProfile) error {
	const size = 512

	dc := gg.NewContext(size, size)
	dc.SetColor(placeholderColor(profile.Seed))
	dc.DrawRectangle(0, 0, size, size)
	dc.Fill()

	dc.SetFontFace(g.face)
	initials := initialsFor(profile.Name)
	tw, th := dc.MeasureString(initials)
	dc.SetColor(color.White)
	dc.DrawString(initials, (size-tw)/2, (size+th)/2)

	dc.SetFontFace(g.smallFace)
	footer := "PLACEHOLDER"
	fw, _ := dc.MeasureString(footer)
	dc.DrawString(footer, (size-fw)/2, size-24)

	return encodePNG(dc.Image(), path)
}

func encodePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// placeholderColor derives a muted RGB background from the seed so the same
// character always gets the same placeholder color.
func placeholderColor(seed uint32) color.NRGBA {
	rnd := rand.New(rand.NewSource(int64(seed)))
	r := 100 + rnd.Intn(101)
	gr := 100 + rnd.Intn(101)
	b := 100 + rnd.Intn(101)
	return color.NRGBA{R: uint8(r), G: uint8(gr), B: uint8(b), A: 255}
}

// initialsFor takes the first letter of up to the first two words of name.
func initialsFor(name string) string {
	fields := strings.Fields(name)
	if len(fields) > 2 {
		fields = fields[:2]
	}
	var b strings.Builder
	for _, f := range fields {
		if f == "" {
			continue
		}
		b.WriteString(strings.ToUpper(f[:1]))
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}
