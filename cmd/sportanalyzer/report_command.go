package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sportanalyzer/internal/feedback"
	"sportanalyzer/internal/report"
	"sportanalyzer/internal/services"
)

func newReportCommand() *cobra.Command {
	var frame int
	var width int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "report <response.json>",
		Short:       "Render a saved analysis response",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, doc.View)
			}
			sel, err := frameSelection(doc.View, frame)
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), doc, sel, report.Options{Width: width})
		},
	}

	cmd.Flags().IntVar(&frame, "frame", 0, "Expand the given frame entry (1-based)")
	cmd.Flags().IntVar(&width, "width", 0, "Terminal width used to wrap feedback text")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the normalized analysis as JSON")
	return cmd
}

// loadDocument reads a saved response or bare analysis payload. A document
// without analysis is returned without error.
func loadDocument(path string) (feedback.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return feedback.Document{}, fmt.Errorf("read report: %w", err)
	}
	doc, err := feedback.ParseDocument(data)
	if err != nil && !errors.Is(err, feedback.ErrNoAnalysis) {
		return feedback.Document{}, fmt.Errorf("parse report %s: %w", path, err)
	}
	return doc, nil
}

// frameSelection expands the 1-based frame entry. Zero selects nothing.
func frameSelection(view feedback.View, frame int) (feedback.Selection, error) {
	var sel feedback.Selection
	if frame == 0 {
		return sel, nil
	}
	if frame < 0 || frame > view.Len() {
		return sel, services.Wrap(services.ErrValidation, "report", "select frame",
			fmt.Sprintf("frame %d out of range (report has %d entries)", frame, view.Len()), nil)
	}
	sel.Toggle(view, frame-1)
	return sel, nil
}
