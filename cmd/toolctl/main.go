package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fblazt/toolbox/internal/catalog"
	"github.com/fblazt/toolbox/internal/model"
	"github.com/fblazt/toolbox/internal/theme"
	"github.com/fblazt/toolbox/internal/tools/imageconv"
	"github.com/fblazt/toolbox/internal/tools/jwtdecoder"
	"github.com/fblazt/toolbox/internal/tools/markdown"
	"github.com/fblazt/toolbox/internal/tools/qrcode"
	"github.com/fblazt/toolbox/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "toolctl",
		Short:         "Toolbox tools from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newJWTCmd())
	root.AddCommand(newWebPCmd())
	root.AddCommand(newMarkdownCmd())
	root.AddCommand(newQRCmd())
	root.AddCommand(newToolsCmd())

	return root
}

func newJWTCmd() *cobra.Command {
	jwtCmd := &cobra.Command{
		Use:   "jwt",
		Short: "JSON Web Token helpers",
	}
	jwtCmd.AddCommand(&cobra.Command{
		Use:   "decode [token]",
		Short: "Decode a JWT without verifying the signature (reads stdin when no token given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := argOrStdin(cmd, args)
			if err != nil {
				return err
			}
			decoded := jwtdecoder.Decode(raw, nowFunc())
			if !decoded.Valid {
				return fmt.Errorf("%s", decoded.Error)
			}
			fmt.Fprintln(cmd.OutOrStdout(), util.PrettyJSON(decoded))
			return nil
		},
	})
	return jwtCmd
}

func argOrStdin(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(bufio.NewReader(cmd.InOrStdin()))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func newWebPCmd() *cobra.Command {
	var (
		quality     int
		outDir      string
		policy      string
		maxParallel int
	)
	webpCmd := &cobra.Command{
		Use:   "webp",
		Short: "WebP image conversion",
	}
	convert := &cobra.Command{
		Use:   "convert <file>...",
		Short: "Convert images to WebP",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := imageconv.ParsePolicy(policy)
			if err != nil {
				return err
			}
			sources := make([]imageconv.Source, 0, len(args))
			for _, name := range args {
				data, err := os.ReadFile(name)
				if err != nil {
					return err
				}
				sources = append(sources, imageconv.Source{
					Name:        filepath.Base(name),
					ContentType: http.DetectContentType(data),
					Data:        data,
				})
			}

			pipeline := imageconv.NewPipeline(imageconv.NewConverter(), maxParallel, zap.NewNop())
			gallery := imageconv.NewGallery(pipeline, p, "", zap.NewNop())
			resp, err := gallery.AddBatch(cmd.Context(), sources, quality)
			if err != nil {
				return err
			}
			return writeBatch(cmd.OutOrStdout(), gallery, resp, outDir)
		},
	}
	convert.Flags().IntVarP(&quality, "quality", "q", imageconv.DefaultQuality, "WebP quality (1-100)")
	convert.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	convert.Flags().StringVar(&policy, "policy", string(imageconv.PolicyAllOrNothing), "batch policy: all-or-nothing or best-effort")
	convert.Flags().IntVar(&maxParallel, "parallel", 0, "max parallel conversions (0 = unlimited)")
	webpCmd.AddCommand(convert)
	return webpCmd
}

func writeBatch(out io.Writer, gallery *imageconv.Gallery, resp model.BatchResponse, outDir string) error {
	for _, name := range resp.Skipped {
		fmt.Fprintf(out, "skip  %s (not an image)\n", name)
	}
	for _, f := range resp.Failures {
		fmt.Fprintf(out, "fail  %s: %s\n", f.Name, f.Error)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	// существующие файлы не перезаписываются, повтор имени получает префикс "N-"
	used := make(map[string]bool)
	taken := func(name string) bool {
		if used[name] {
			return true
		}
		_, err := os.Lstat(filepath.Join(outDir, name))
		return !os.IsNotExist(err)
	}
	for _, img := range resp.Added {
		name, data, err := gallery.Open(img.ID)
		if err != nil {
			return err
		}
		name = imageconv.UniqueName(name, taken)
		used[name] = true
		target := filepath.Join(outDir, name)
		if err := writeNewFile(target, data); err != nil {
			return err
		}
		fmt.Fprintf(out, "ok    %s -> %s  %s -> %s (%.1f%%)\n", img.OriginalName, target,
			util.FormatFileSize(img.OriginalSize), util.FormatFileSize(img.EncodedSize),
			util.SavingsPercent(img.OriginalSize, img.EncodedSize))
	}
	if resp.State == string(imageconv.StateFailed) {
		return fmt.Errorf("conversion failed for %d file(s)", len(resp.Failures))
	}
	return nil
}

// writeNewFile создаёт файл и падает, если он уже существует.
func writeNewFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newMarkdownCmd() *cobra.Command {
	var (
		themeName string
		width     int
		asHTML    bool
	)
	mdCmd := &cobra.Command{
		Use:   "md",
		Short: "Markdown previewer",
	}
	render := &cobra.Command{
		Use:   "render [file]",
		Short: "Render markdown for the terminal or as HTML (reads stdin when no file given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src string
			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				src = string(data)
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				src = string(data)
			}

			if asHTML {
				html, err := markdown.HTML(src)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), html)
				return nil
			}
			t, err := theme.Parse(themeName)
			if err != nil {
				return err
			}
			out, err := markdown.Terminal(src, string(t), width)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	render.Flags().StringVar(&themeName, "theme", string(theme.Default), "light or dark")
	render.Flags().IntVar(&width, "width", 80, "word wrap width")
	render.Flags().BoolVar(&asHTML, "html", false, "print HTML instead of terminal output")
	mdCmd.AddCommand(render)

	mdCmd.AddCommand(&cobra.Command{
		Use:   "sample",
		Short: "Print the sample document",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), markdown.Sample)
			return nil
		},
	})
	return mdCmd
}

func newQRCmd() *cobra.Command {
	var (
		opts   qrcode.Options
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "qr <text>",
		Short: "Generate a QR code as PNG or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Text = args[0]
			var (
				data []byte
				err  error
				name string
			)
			switch format {
			case "png":
				data, err = qrcode.PNG(opts)
				name = qrcode.PNGName
			case "svg":
				data, err = qrcode.SVG(opts)
				name = qrcode.SVGName
			default:
				return fmt.Errorf("unknown format %q, want png or svg", format)
			}
			if err != nil {
				return err
			}
			if output == "" {
				output = name
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", output, util.FormatFileSize(int64(len(data))))
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Size, "size", qrcode.DefaultSize, "size in pixels (128-512)")
	cmd.Flags().StringVar(&opts.Foreground, "fg", qrcode.DefaultForeground, "foreground color #rrggbb")
	cmd.Flags().StringVar(&opts.Background, "bg", qrcode.DefaultBackground, "background color #rrggbb")
	cmd.Flags().StringVar(&format, "format", "png", "png or svg")
	cmd.Flags().StringVarP(&output, "out", "o", "", "output file, - for stdout")
	return cmd
}

func newToolsCmd() *cobra.Command {
	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "Tool catalog",
	}
	toolsCmd.AddCommand(&cobra.Command{
		Use:   "search [query]",
		Short: "Search tools by title, description, category or keyword",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			groups := catalog.Search(query)
			if len(groups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tools found.")
				return nil
			}
			for _, g := range groups {
				fmt.Fprintln(cmd.OutOrStdout(), g.Category)
				for _, t := range g.Tools {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %s\n", t.Title, t.Path)
				}
			}
			return nil
		},
	})
	return toolsCmd
}

// nowFunc подменяется в тестах.
var nowFunc = time.Now
