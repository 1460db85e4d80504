package regeneration

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"voiceregen/internal/config"
	"voiceregen/internal/fileutil"
	"voiceregen/internal/logging"
	"voiceregen/internal/media/transcode"
	"voiceregen/internal/placeholder"
	"voiceregen/internal/record"
	"voiceregen/internal/report"
	"voiceregen/internal/services"
	"voiceregen/internal/services/f5tts"
	"voiceregen/internal/stage"
)

// StageName identifies the regeneration stage in logs and summaries.
const StageName = "regenerate"

// Output record fields.
const (
	FieldGenerationParameters = "generation_parameters"
	FieldReferenceUsed        = "reference_wav_used"
)

// Synthesizer produces speech for a request. *f5tts.Service satisfies it.
type Synthesizer interface {
	Synthesize(ctx context.Context, req f5tts.Request) error
}

type availabilityChecker interface {
	Available(ctx context.Context) error
}

// Stage regenerates every staged record that mentions the placeholder.
type Stage struct {
	stagingDir  string
	outputDir   string
	lexiconName string
	pattern     *placeholder.Pattern
	prompts     *PromptBuilder
	selector    *ReferenceSelector
	nfeStep     int
	seed        *int64
	synth       Synthesizer
	logger      *slog.Logger
	sink        stage.Syncer
}

// NewStage builds the regeneration stage. A nil synth uses F5-TTS as
// configured under [tts].
func NewStage(cfg *config.Config, logger *slog.Logger, sink stage.Syncer, synth Synthesizer) (*Stage, error) {
	pattern, err := placeholder.New(cfg.Filter.NameFragment, cfg.Filter.Tokens)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, StageName, "compile filter",
			"Fix filter.name_fragment or filter.tokens", err)
	}
	if synth == nil {
		synth = f5tts.NewService(f5tts.Config{
			Command:   cfg.TTS.Command,
			Package:   cfg.TTS.Package,
			Model:     cfg.TTS.Model,
			Device:    cfg.TTS.Device,
			HFToken:   cfg.TTS.HFToken,
			ExtraArgs: cfg.TTS.ExtraArgs,
		})
	}
	reg := cfg.Regeneration
	return &Stage{
		stagingDir:  cfg.Paths.StagingDir,
		outputDir:   cfg.Paths.OutputDir,
		lexiconName: filepath.Base(cfg.Paths.Lexicon),
		pattern:     pattern,
		prompts:     NewPromptBuilder(pattern, reg.ReplacementName, reg.StripCommaPause),
		selector:    NewReferenceSelector(reg.ReferenceThresholdKB, reg.ReferenceMinKB, reg.ReferenceSeed),
		nfeStep:     reg.NFEStep,
		seed:        reg.Seed,
		synth:       synth,
		logger:      logging.NewComponentLogger(logger, StageName),
		sink:        sink,
	}, nil
}

// Name implements stage.Handler.
func (s *Stage) Name() string { return StageName }

// HealthCheck verifies the synthesizer can be launched.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if checker, ok := s.synth.(availabilityChecker); ok {
		if err := checker.Available(ctx); err != nil {
			return stage.Unhealthy(StageName, err.Error())
		}
	}
	return stage.Healthy(StageName)
}

// Run walks the staging tree and regenerates matching records.
func (s *Stage) Run(ctx context.Context) (*report.Summary, error) {
	ctx = services.WithStage(ctx, StageName)
	logger := logging.WithContext(ctx, s.logger)
	start := time.Now()
	summary := report.NewSummary(StageName, report.Processed, report.Generated, report.Skipped, report.Failed)

	logger.Info("regeneration started",
		logging.String("staging_dir", s.stagingDir),
		logging.String("output_dir", s.outputDir),
		logging.Int("nfe_step", s.nfeStep),
	)

	err := fileutil.Walk(s.stagingDir, ".json", func(entry fileutil.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.Name == s.lexiconName {
			return nil
		}
		return s.processRecord(ctx, entry, summary)
	})
	summary.Finish(start)
	if err := stage.WalkError(StageName, err); err != nil {
		return summary, err
	}
	logger.Info("regeneration complete", summary.Attrs()...)
	return summary, nil
}

func (s *Stage) processRecord(ctx context.Context, entry fileutil.Entry, summary *report.Summary) error {
	ctx, logger := stage.RecordLogger(ctx, s.logger, entry.Rel())
	defer stage.Sync(logger, s.sink)

	doc, err := stage.LoadRecord(entry.Path)
	if err != nil {
		summary.Inc(report.Failed)
		logging.WarnWithContext(logger, "record skipped", "record_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the record JSON and rerun the regenerate stage"),
		)
		return nil
	}
	sentence, ok := doc.Sentence()
	if !ok || !s.pattern.Match(sentence) {
		return nil
	}
	summary.Inc(report.Processed)

	outDir := filepath.Join(s.outputDir, entry.RelDir)
	outWav := filepath.Join(outDir, entry.Stem()+".wav")
	outJSON := filepath.Join(outDir, entry.Name)
	if fileutil.Exists(outWav) {
		summary.Inc(report.Skipped)
		logger.Debug("output exists", logging.String("path", outWav))
		return nil
	}

	prompt := s.prompts.Build(sentence)
	original := filepath.Join(filepath.Dir(entry.Path), entry.Stem()+".wav")
	ref, err := s.selector.Select(original)
	if err != nil {
		summary.Inc(report.Failed)
		logging.WarnWithContext(logger, "no reference audio", "reference_missing",
			logging.Error(err),
			logging.String("original", original),
			logging.String(logging.FieldErrorHint, "rerun the select stage to stage the original WAV"),
		)
		return nil
	}
	refAttrs := []logging.Attr{
		logging.String("reference", ref.Path),
		logging.String("reason", ref.Reason),
		logging.Int64("size_bytes", ref.Size),
	}
	if info, err := transcode.ReadWavInfo(ref.Path); err == nil {
		refAttrs = append(refAttrs, logging.Duration("duration", info.Duration))
	}
	if ref.Original {
		logger.Debug("reference selected", logging.Args(refAttrs...)...)
	} else {
		logger.Info("alternative reference selected", logging.Args(refAttrs...)...)
	}

	req := f5tts.Request{
		RefAudio:   ref.Path,
		GenText:    prompt.Text,
		OutputPath: outWav,
		NFEStep:    s.nfeStep,
		Speed:      prompt.Speed,
		Seed:       s.seed,
	}
	logger.Info("generating speech",
		logging.String(logging.FieldEventType, "synthesis_started"),
		logging.String("gen_text", prompt.Text),
		logging.Float64("speed", prompt.Speed),
	)
	if err := s.synth.Synthesize(ctx, req); err != nil {
		removePartial(outWav)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		summary.Inc(report.Failed)
		logging.WarnWithContext(logger, "synthesis failed", "synthesis_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the F5-TTS output in the log and the [tts] settings"),
			logging.String(logging.FieldImpact, "line keeps its original audio"),
		)
		return nil
	}

	out, err := OutputRecord(doc, req, ref)
	if err == nil {
		err = record.Save(outJSON, out)
	}
	if err != nil {
		summary.Inc(report.Failed)
		removePartial(outWav)
		logging.WarnWithContext(logger, "output record not written", "record_write_failed",
			logging.Error(err),
			logging.String("path", outJSON),
			logging.String(logging.FieldErrorHint, "check free space and permissions on output_dir"),
		)
		return nil
	}
	summary.Inc(report.Generated)
	logger.Info("line regenerated",
		logging.String(logging.FieldEventType, "line_regenerated"),
		logging.String("output", outWav),
	)
	return nil
}

// OutputRecord returns a copy of doc carrying the generation parameters of
// req. Records regenerated from a substitute reference also name it under
// reference_wav_used.
func OutputRecord(doc *record.Document, req f5tts.Request, ref Reference) (*record.Document, error) {
	out := doc.Clone()
	if !out.IsObject() {
		return out, nil
	}
	params := record.NewObject()
	for _, member := range []struct {
		key   string
		value any
	}{
		{"ref_file", req.RefAudio},
		{"ref_text", req.RefText},
		{"gen_text", req.GenText},
		{"file_wave", req.OutputPath},
		{"seed", req.Seed},
		{"nfe_step", req.NFEStep},
		{"speed", req.Speed},
	} {
		if err := params.Set(member.key, member.value); err != nil {
			return nil, err
		}
	}
	if err := out.Set(FieldGenerationParameters, params); err != nil {
		return nil, err
	}
	if !ref.Original {
		if err := out.Set(FieldReferenceUsed, ref.Path); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// removePartial deletes a WAV left behind by a failed synthesis so the next
// run retries the line instead of skipping it.
func removePartial(path string) {
	_ = os.Remove(path)
}
