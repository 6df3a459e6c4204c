package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/threebody/internal/export"
	"github.com/san-kum/threebody/internal/storage"
)

// output opens outFile, or stdout when it is empty.
func output(def string) (io.WriteCloser, string, error) {
	path := outFile
	if path == "" {
		path = def
	}
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, "", nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, "", err
	}
	return f, path, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeExport(def string, fn func(io.Writer) error) error {
	w, path, err := output(def)
	if err != nil {
		return err
	}
	if err := fn(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, _, recs, err := loadRun(args, 1)
	if err != nil {
		return err
	}
	return writeExport("", func(w io.Writer) error {
		return storage.ExportCSV(w, recs)
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	_, meta, recs, err := loadRun(args, 1)
	if err != nil {
		return err
	}
	return writeExport("", func(w io.Writer) error {
		return storage.ExportJSON(w, *meta, recs)
	})
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, meta, recs, err := loadRun(args, 1)
	if err != nil {
		return err
	}
	return writeExport(meta.ID+".svg", func(w io.Writer) error {
		return export.TrajectoriesToSVG(w, recs, export.SVGOptions{
			Plane: plane,
			Names: meta.BodyNames,
			Every: every,
		})
	})
}
