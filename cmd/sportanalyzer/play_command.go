package main

import (
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sportanalyzer/internal/feedback"
	"sportanalyzer/internal/media"
	"sportanalyzer/internal/playback"
	"sportanalyzer/internal/playback/mpv"
	"sportanalyzer/internal/services"
	"sportanalyzer/internal/tui"
	"sportanalyzer/internal/upload"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var analysisPath string
	var volume float64
	var muted bool

	cmd := &cobra.Command{
		Use:   "play [video-or-url]",
		Short: "Play a video in mpv alongside its frame feedback",
		Long: "Play a local video or URL in mpv. With --analysis, the saved response is shown\n" +
			"next to playback and its processed video is used when no video is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// The player owns the terminal; records only go to the log file.
			logger, err := ctx.logger(io.Discard)
			if err != nil {
				return err
			}

			var doc feedback.Document
			if strings.TrimSpace(analysisPath) != "" {
				if doc, err = loadDocument(analysisPath); err != nil {
					return err
				}
			}

			ref := ""
			if len(args) == 1 {
				ref = args[0]
			} else if doc.ProcessedVideo != "" {
				client := upload.NewClient(upload.Config{BaseURL: cfg.Service.BaseURL, EndpointPath: cfg.Service.EndpointPath})
				ref = client.ResolveReference(doc.ProcessedVideo)
			}
			ref, err = resolvePlayable(ref)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("volume") {
				volume = cfg.Player.DefaultVolume
			}
			engine, err := mpv.Start(cmd.Context(), mpv.Options{
				Binary:    cfg.Player.Binary,
				SocketDir: cfg.Player.SocketDir,
				Ref:       ref,
				Volume:    volume,
				Muted:     muted,
				Logger:    logger,
			})
			if err != nil {
				return services.Wrap(services.ErrPlayback, "play", "start engine", "", err)
			}
			defer engine.Close()

			ctrl := playback.New(engine, playback.WithVolume(volume), playback.WithLogger(logger))
			if muted {
				if err := ctrl.SetMuted(true); err != nil {
					return err
				}
			}
			return tui.Run(cmd.Context(), ctrl, engine, tui.RunOptions{
				Options: tui.Options{
					Title: playTitle(ref),
					View:  doc.View,
				},
				Input:     cmd.InOrStdin(),
				Output:    cmd.OutOrStdout(),
				AltScreen: true,
			})
		},
	}

	cmd.Flags().StringVarP(&analysisPath, "analysis", "a", "", "Saved analysis response to show during playback")
	cmd.Flags().Float64Var(&volume, "volume", 0, "Initial volume between 0 and 1 (defaults to player.default_volume)")
	cmd.Flags().BoolVar(&muted, "mute", false, "Start muted")
	return cmd
}

// resolvePlayable accepts URLs as given and checks local paths exist.
func resolvePlayable(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", services.Wrap(services.ErrValidation, "play", "resolve video", "a video path, URL, or --analysis with a processed video is required", nil)
	}
	if isRemote(ref) {
		return ref, nil
	}
	file, err := media.Stat(ref)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "play", "resolve video", "", err)
	}
	return file.Path, nil
}

func isRemote(ref string) bool {
	parsed, err := url.Parse(ref)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}

func playTitle(ref string) string {
	if isRemote(ref) {
		parsed, _ := url.Parse(ref)
		if name := path.Base(parsed.Path); name != "." && name != "/" {
			return name
		}
		return parsed.Host
	}
	return filepath.Base(ref)
}
