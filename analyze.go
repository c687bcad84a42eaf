package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phobologic/lexscope/internal/config"
	"github.com/phobologic/lexscope/internal/lang"
	"github.com/phobologic/lexscope/internal/model"
	"github.com/phobologic/lexscope/internal/toon"
)

// outputFlags are the rendering flags shared by analyze and scan.
type outputFlags struct {
	format string
	pretty bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "json", "output format: json or toon")
	cmd.Flags().BoolVar(&o.pretty, "pretty", false, "indent JSON output")
}

// apply copies explicitly set flags over the configured values.
func (o *outputFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = o.format
	}
	if cmd.Flags().Changed("pretty") {
		cfg.Output.Pretty = o.pretty
	}
	return config.Validate(cfg)
}

func newAnalyzeCmd(g *globals) *cobra.Command {
	var (
		out        outputFlags
		langName   string
		advanced   bool
		treeSitter bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Analyze one source file, or stdin with -",
		Long: `Analyze one C++ or Java source file. The language is taken from the file
extension unless --lang is given; reading stdin ("-") requires --lang.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			if err := out.apply(cmd, cfg); err != nil {
				return err
			}
			if treeSitter {
				cfg.Diagnostics.TreeSitter = true
				advanced = true
			}

			name := args[0]
			language, err := resolveLanguage(name, langName)
			if err != nil {
				return err
			}
			data, err := readSource(name, cmd.InOrStdin())
			if err != nil {
				return err
			}
			unit, err := model.NewSourceUnit(data, language)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			engine, closeEngine, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer closeEngine()

			logger.Debug("analyzing", "file", name, "language", language, "bytes", len(data), "advanced", advanced)

			var (
				res   *model.AnalysisResult
				diags []string
				value any
			)
			if advanced {
				adv := engine.AnalyzeAdvanced(cmd.Context(), unit)
				res, diags, value = &adv.AnalysisResult, adv.SyntaxErrors, adv
			} else {
				res = engine.Analyze(unit)
				value = res
			}

			if cfg.Output.Format == "toon" {
				_, _ = fmt.Fprintln(g.stdout, toon.EncodeResult(name, language, res, diags))
				return nil
			}
			return model.WriteJSON(g.stdout, value, cfg.Output.Pretty)
		},
	}

	out.register(cmd)
	cmd.Flags().StringVarP(&langName, "lang", "l", "", "source language: cpp or java")
	cmd.Flags().BoolVarP(&advanced, "advanced", "a", false, "include bracket and semicolon diagnostics")
	cmd.Flags().BoolVar(&treeSitter, "tree-sitter", false, "add tree-sitter parse errors to diagnostics (implies --advanced)")
	return cmd
}

// resolveLanguage prefers an explicit --lang and falls back to the file
// extension.
func resolveLanguage(name, explicit string) (model.Language, error) {
	if explicit != "" {
		return model.ParseLanguage(explicit)
	}
	if name == "-" {
		return "", fmt.Errorf("reading stdin requires --lang")
	}
	if l := lang.ForExtension(filepath.Ext(name)); l != "" {
		return l, nil
	}
	return "", fmt.Errorf("%s: %w (use --lang)", name, model.ErrUnsupportedLanguage)
}

func readSource(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return data, nil
}
