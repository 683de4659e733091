package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"recall/internal/adapter/fs"
	"recall/internal/domain"
	"recall/internal/usecase"
)

var (
	addDocID    string
	addText     string
	addIncludes []string
	addExcludes []string
)

var addCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Ingest a file or directory into memory",
	Long: `Ingest a document, or every matching file under a directory, into
the knowledge store. Each file becomes one document keyed by its
path relative to the ingested root.

Examples:
  recall add notes.md                     # Ingest one file
  recall add ./docs --include "**/*.md"   # Ingest a directory
  recall add notes.md --id release-notes  # Explicit document id
  recall add --id memo --text "..."       # Ingest inline text`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addDocID, "id", "", "document id (single file only, default is the file path)")
	addCmd.Flags().StringVar(&addText, "text", "", "ingest this text instead of a path (requires --id)")
	addCmd.Flags().StringSliceVar(&addIncludes, "include", nil, "glob patterns to include (default everything)")
	addCmd.Flags().StringSliceVar(&addExcludes, "exclude", nil, "glob patterns to exclude")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if addText != "" {
		if len(args) > 0 {
			return errors.New("--text and a path are mutually exclusive")
		}
		if addDocID == "" {
			return errors.New("--text requires --id")
		}
		m, err := openMemory()
		if err != nil {
			return err
		}
		defer m.Close()
		if err := m.AddKnowledge(cmd.Context(), addDocID, addText, nil); err != nil {
			return err
		}
		fmt.Printf("Ingested inline text as %q\n", addDocID)
		return nil
	}
	if len(args) == 0 {
		return errors.New("a path or --text is required")
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	m, err := openMemory()
	if err != nil {
		return err
	}
	defer m.Close()

	if !info.IsDir() {
		docID := addDocID
		if docID == "" {
			docID = filepath.Base(path)
		}
		if err := ingestFile(cmd.Context(), m, path, docID, info.Size()); err != nil {
			return err
		}
		fmt.Printf("Ingested %s as %q\n", path, docID)
		return nil
	}

	if addDocID != "" {
		return errors.New("--id applies to single files only")
	}

	walker := fs.NewWalker(addIncludes, addExcludes)
	files, err := walker.Walk(path)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", path, err)
	}
	if len(files) == 0 {
		fmt.Println("No matching files.")
		return nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Ingesting"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	var ingested, skipped int
	var failures []string
	for _, f := range files {
		err := ingestFile(cmd.Context(), m, f.Path, filepath.ToSlash(f.RelPath), f.Size)
		switch {
		case errors.Is(err, domain.ErrDocumentExists):
			skipped++
		case err != nil:
			failures = append(failures, fmt.Sprintf("%s: %v", f.RelPath, err))
		default:
			ingested++
		}
		bar.Add(1)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Documents added:   %d\n", ingested)
	fmt.Printf("  Documents skipped: %d (already stored)\n", skipped)
	if len(failures) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, f := range failures {
			fmt.Printf("  - %s\n", f)
		}
	}
	return nil
}

func ingestFile(ctx context.Context, m *usecase.Memory, path, docID string, size int64) error {
	text, err := fs.ReadFile(path)
	if err != nil {
		return err
	}
	if text == "" {
		return errors.New("file is empty")
	}
	return m.AddKnowledge(ctx, docID, text, map[string]string{
		"source": path,
		"bytes":  strconv.FormatInt(size, 10),
	})
}
