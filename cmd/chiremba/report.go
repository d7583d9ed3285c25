package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chiremba/chiremba/internal/report"
	"github.com/chiremba/chiremba/pkg/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	outputDir     string
	outputFile    string
	resourcePaths []string
)

var reportCmd = &cobra.Command{
	Use:   "report [data.json]",
	Short: "Render a report JSON file as a paginated PDF",
	Long: `Reads a report payload (the same JSON accepted by POST /api/report/download)
and writes medical_report_<date>.pdf into the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var printCmd = &cobra.Command{
	Use:   "print [data.json]",
	Short: "Render a report JSON file as a printable HTML page",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrint,
}

var convertCmd = &cobra.Command{
	Use:   "convert [input.html] [output.pdf]",
	Short: "Paginate an HTML document into a PDF",
	Long: `Lays out an HTML document with the native rasterizer and slices it onto
pages. Relative image paths resolve against the input file's directory.
The output defaults to the input path with a .pdf extension.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func readReportData(path string) (report.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return report.Data{}, err
	}
	defer f.Close()
	return report.Decode(f)
}

func newGenerator(extra ...api.Option) (*api.Generator, error) {
	return api.New(append(cfg.ReportOptions(logger), extra...)...)
}

func runReport(cmd *cobra.Command, args []string) error {
	data, err := readReportData(args[0])
	if err != nil {
		return err
	}
	gen, err := newGenerator()
	if err != nil {
		return err
	}
	defer gen.Close()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	path, err := gen.DownloadToFile(cmd.Context(), data, outputDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runPrint(cmd *cobra.Command, args []string) error {
	data, err := readReportData(args[0])
	if err != nil {
		return err
	}
	gen, err := newGenerator()
	if err != nil {
		return err
	}
	defer gen.Close()

	var buf bytes.Buffer
	if _, err := gen.Print(cmd.Context(), data, &buf); err != nil {
		return err
	}
	if outputFile == "" {
		_, err = buf.WriteTo(cmd.OutOrStdout())
		return err
	}
	return os.WriteFile(outputFile, buf.Bytes(), 0o644)
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := ""
	if len(args) > 1 {
		output = args[1]
	} else {
		ext := filepath.Ext(input)
		output = input[:len(input)-len(ext)] + ".pdf"
	}

	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	var opts []api.Option
	for _, p := range resourcePaths {
		opts = append(opts, api.WithResourcePath(p))
	}
	gen, err := newGenerator(opts...)
	if err != nil {
		return err
	}
	defer gen.Close()

	var buf bytes.Buffer
	pages, err := gen.ConvertHTML(cmd.Context(), in, input, &buf)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return err
	}
	logger.Debug("converted document",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("pages", pages),
	)
	return nil
}
