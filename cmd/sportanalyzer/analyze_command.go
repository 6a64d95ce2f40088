package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sportanalyzer/internal/feedback"
	"sportanalyzer/internal/fileutil"
	"sportanalyzer/internal/logging"
	"sportanalyzer/internal/media"
	"sportanalyzer/internal/media/probe"
	"sportanalyzer/internal/notifications"
	"sportanalyzer/internal/report"
	"sportanalyzer/internal/services"
	"sportanalyzer/internal/session"
	"sportanalyzer/internal/upload"
)

type analyzeOptions struct {
	prompt   string
	fps      float64
	testMode bool
	jsonOut  bool
	outPath  string
	frame    int
	quiet    bool
}

type analyzeResult struct {
	SessionID      string         `json:"sessionId"`
	File           string         `json:"file"`
	Prompt         string         `json:"prompt"`
	FPS            float64        `json:"fps"`
	TestMode       bool           `json:"testMode"`
	ElapsedSeconds float64        `json:"elapsedSeconds"`
	ProcessedVideo string         `json:"processedVideo"`
	Analysis       *feedback.View `json:"analysis"`
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <video>",
		Short: "Upload a video for analysis and print the feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.prompt, "prompt", "", "Analysis prompt (defaults to the configured prompt)")
	cmd.Flags().Float64Var(&opts.fps, "fps", 0, "Frames per second to sample")
	cmd.Flags().BoolVar(&opts.testMode, "test-mode", false, "Skip inference and return a pass-through video")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Save the raw service response to this path")
	cmd.Flags().IntVar(&opts.frame, "frame", 0, "Expand the given frame entry (1-based) in the report")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Hide upload progress")
	return cmd
}

func runAnalyze(cmd *cobra.Command, ctx *commandContext, path string, opts analyzeOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if opts.frame < 0 {
		return services.Wrap(services.ErrValidation, "analyze", "select frame",
			fmt.Sprintf("frame %d out of range", opts.frame), nil)
	}
	file, err := media.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrValidation, "analyze", "select file", "", err)
	}

	client := upload.NewClient(upload.Config{
		BaseURL:      cfg.Service.BaseURL,
		EndpointPath: cfg.Service.EndpointPath,
		Timeout:      cfg.RequestTimeout(),
	}, upload.WithLogger(logger))
	notifier := notifications.ForSession(notifications.NewService(cfg), logger)
	ctrl := session.New(session.SettingsFromConfig(cfg), session.UploadTracker(client),
		session.WithLogger(logger),
		session.WithNotifier(notifier),
	)
	defer ctrl.Close()

	if err := ctrl.SelectFile(file); err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("prompt") {
		if err := ctrl.SetPrompt(opts.prompt); err != nil {
			return err
		}
	}
	if flags.Changed("fps") {
		if err := ctrl.SetFPS(opts.fps); err != nil {
			return err
		}
	}
	if flags.Changed("test-mode") {
		if err := ctrl.SetTestMode(opts.testMode); err != nil {
			return err
		}
	}

	errOut := cmd.ErrOrStderr()
	params := ctrl.Snapshot().Parameters
	if !opts.quiet {
		fmt.Fprintf(errOut, "Analyzing %s (%s) at %s fps\n", file.Name, file.HumanSize(), formatFPS(params.FPS))
		if frames := estimateFrames(cmd, cfg.Analysis.ProbeBinary, file, params.FPS); frames > 0 {
			fmt.Fprintf(errOut, "Expect about %d sampled frames\n", frames)
		}
	}

	view := newProgressView(errOut, opts.quiet)
	unsubscribe := ctrl.Subscribe(view.observe)
	defer unsubscribe()

	if err := ctrl.Submit(cmd.Context()); err != nil {
		return err
	}
	select {
	case <-view.done:
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	}

	snap := ctrl.Snapshot()
	if snap.Stage == session.Error {
		if cmd.Context().Err() != nil {
			return cmd.Context().Err()
		}
		return services.Wrap(services.ErrRemote, "analyze", "submit", snap.ErrorReason, nil)
	}
	if snap.Result == nil {
		return errors.New("analysis finished without a result")
	}
	result := snap.Result

	if out := strings.TrimSpace(opts.outPath); out != "" {
		if err := fileutil.WriteFileAtomic(out, result.Response.Body, 0o644); err != nil {
			return fmt.Errorf("save response: %w", err)
		}
		logger.Info("analysis response saved", logging.String("path", out))
	}

	if opts.jsonOut {
		payload := analyzeResult{
			SessionID:      snap.ID,
			File:           snap.Source.Path,
			Prompt:         snap.SubmittedPrompt,
			FPS:            snap.Parameters.FPS,
			TestMode:       snap.Parameters.TestMode,
			ElapsedSeconds: snap.Elapsed().Seconds(),
			ProcessedVideo: result.ProcessedVideo,
		}
		if result.View.HasAnalysis() {
			payload.Analysis = &result.View
		}
		return writeJSON(cmd, payload)
	}

	sel, err := frameSelection(result.View, opts.frame)
	if err != nil {
		return err
	}
	doc := feedback.Document{ProcessedVideo: result.ProcessedVideo, View: result.View}
	return report.Render(cmd.OutOrStdout(), doc, sel, report.Options{})
}

// estimateFrames asks ffprobe for the duration. Failures only cost the hint.
func estimateFrames(cmd *cobra.Command, binary string, file media.File, fps float64) int {
	if strings.TrimSpace(binary) == "" {
		return 0
	}
	info, err := probe.Inspect(cmd.Context(), binary, file.Path)
	if err != nil {
		return 0
	}
	return info.EstimatedFrames(fps)
}

func formatFPS(fps float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", fps), "0"), ".")
}
