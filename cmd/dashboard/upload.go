package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"soporte.ai/dashboard/internal/core"
	"soporte.ai/dashboard/internal/store"
)

const maxUploadBytes = 10 << 20

var acceptedExtensions = []string{".pdf", ".txt"}

var errUploadFailed = errors.New("one or more documents failed to upload")

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload PDF or TXT documents to the knowledge base",
		Long: `Uploads each file once, in order. Only .pdf and .txt files up to 10MB
are accepted. A failed upload is reported and not retried.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			controller := core.NewUploadController(a.client,
				core.WithUploadLogger(a.logger),
				core.WithUploadObserver(func(s core.UploadSnapshot) {
					if s.Outcome == core.UploadInFlight && s.File != nil {
						fmt.Fprintf(out, "Subiendo %s...\n", s.File.Name)
					}
				}),
			)

			failed := false
			for _, path := range args {
				staged, err := chooseFile(path)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", path, err)
					failed = true
					continue
				}

				controller.SelectFile(staged)
				outcome, err := controller.Submit(cmd.Context())
				if err != nil {
					return err
				}

				switch outcome {
				case core.UploadSucceeded:
					fmt.Fprintf(out, "%s: Documento procesado correctamente.\n", staged.Name)
				default:
					fmt.Fprintf(out, "%s: Error al subir el documento.\n", staged.Name)
					failed = true
				}
			}

			if failed {
				a.logger.Warn("Upload finished with failures", zap.Int("files", len(args)))
				return errUploadFailed
			}
			return nil
		},
	}
}

// chooseFile plays the role of the file picker: it only lets through
// documents the knowledge base accepts.
func chooseFile(path string) (store.StagedFile, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(acceptedExtensions, ext) {
		return store.StagedFile{}, fmt.Errorf("unsupported file type %q, expected PDF or TXT", ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return store.StagedFile{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return store.StagedFile{}, fmt.Errorf("is a directory")
	}
	if info.Size() > maxUploadBytes {
		return store.StagedFile{}, fmt.Errorf("file is %d bytes, maximum is 10MB", info.Size())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return store.StagedFile{}, fmt.Errorf("failed to read file: %w", err)
	}
	return store.StagedFile{Name: filepath.Base(path), Content: content}, nil
}
