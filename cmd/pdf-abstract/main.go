// pdf-abstract 批量抽取中英文学位论文 PDF 的摘要与元数据
// Usage:
//
//	pdf-abstract [flags] <file-or-directory>
//	pdf-abstract --serve --listen :8080
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pdf-abstract/internal/config"
	"pdf-abstract/internal/extract"
	"pdf-abstract/internal/keywords"
	"pdf-abstract/internal/logger"
	"pdf-abstract/internal/output"
	"pdf-abstract/internal/pdf"
	"pdf-abstract/internal/rules"
	"pdf-abstract/internal/server"
	"pdf-abstract/internal/store"
	"pdf-abstract/internal/types"
)

func main() {
	var (
		outputDir    = flag.String("output-dir", "", "output directory (default: <input>/abstracts)")
		recursive    = flag.Bool("recursive", false, "descend into subdirectories")
		verbose      = flag.Bool("v", false, "print per-document extraction summary")
		veryVerbose  = flag.Bool("vv", false, "print boundary and title decisions too")
		inspect      = flag.Bool("inspect", false, "dump numbered page text instead of extracting")
		inspectPages = flag.Int("inspect-pages", 3, "pages to dump in inspect mode")
		inspectLines = flag.Int("inspect-lines", 40, "lines per page to dump in inspect mode")
		rulesPath    = flag.String("rules", "", "extraction rules YAML (default: built-in rules)")
		dbPath       = flag.String("db", "", "record library path (default: no library)")
		configPath   = flag.String("config", "", "config file path")
		genKeywords  = flag.Bool("keywords", false, "annotate records with LLM-generated keywords")
		serve        = flag.Bool("serve", false, "run the HTTP API instead of batch mode")
		listen       = flag.String("listen", ":8080", "HTTP listen address for --serve")
	)
	flag.Parse()

	if err := logger.Init(nil); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
	}
	defer logger.Close()

	if err := run(*outputDir, *recursive, *verbose, *veryVerbose,
		*inspect, *inspectPages, *inspectLines,
		*rulesPath, *dbPath, *configPath, *genKeywords, *serve, *listen); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(outputDir string, recursive, verbose, veryVerbose bool,
	inspect bool, inspectPages, inspectLines int,
	rulesPath, dbPath, configPath string, genKeywords, serve bool, listen string) error {

	cfg, err := config.NewConfigManager(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Load(); err != nil {
		return err
	}
	if rulesPath == "" {
		rulesPath = cfg.GetRulesPath()
	}
	if outputDir == "" {
		outputDir = cfg.GetOutputDirectory()
	}

	rs, err := loadRules(rulesPath)
	if err != nil {
		return err
	}
	extractor := extract.New(rs)

	ctx := context.Background()

	var annotator *keywords.Annotator
	if genKeywords || serve {
		annotator, err = keywords.NewAnnotator(ctx, cfg.GetAPIKey(), cfg.GetBaseURL(), cfg.GetModel())
		if err != nil {
			if genKeywords {
				return err
			}
			// serve 模式下缺 API key 仅降级，不阻止启动
			logger.Warn("keyword annotation disabled", logger.Err(err))
			annotator = nil
		}
	}

	if serve {
		return runServer(extractor, annotator, cfg, dbPath, listen)
	}

	if flag.NArg() != 1 {
		return fmt.Errorf("expected exactly one input path, got %d (use -h for usage)", flag.NArg())
	}
	input := flag.Arg(0)

	pdfs, err := collectPDFs(input, recursive)
	if err != nil {
		return err
	}
	if len(pdfs) == 0 {
		return fmt.Errorf("no PDF files found under %s", input)
	}

	if inspect {
		return runInspect(pdfs, inspectPages, inspectLines)
	}

	level := extract.Quiet
	if verbose {
		level = extract.Verbose
	}
	if veryVerbose {
		level = extract.VeryVerbose
	}

	if outputDir == "" {
		outputDir = defaultOutputDir(input)
	}
	writer, err := output.NewWriter(outputDir)
	if err != nil {
		return err
	}

	var lib *store.Store
	if dbPath != "" {
		lib, err = store.Open(dbPath)
		if err != nil {
			return err
		}
		defer lib.Close()
	}

	return runBatch(ctx, extractor, annotator, writer, lib, pdfs, level)
}

func loadRules(path string) (*rules.Ruleset, error) {
	if path == "" {
		return rules.Default(), nil
	}
	return rules.Load(path)
}

// runBatch 逐一处理 PDF：单个文件失败仅记录并跳过，不中断整批
func runBatch(ctx context.Context, extractor *extract.Extractor, annotator *keywords.Annotator,
	writer *output.Writer, lib *store.Store, pdfs []string, level extract.Verbosity) error {

	var done, failed int
	var sheet []types.ExtractionRecord
	for _, path := range pdfs {
		doc, err := pdf.LoadDocument(path)
		if err != nil {
			logger.Warn("skipping document", logger.String("path", path), logger.Err(err))
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", filepath.Base(path), err)
			failed++
			continue
		}

		tr := extract.NewTrace()
		rec := extractor.Extract(doc, tr)

		if annotator != nil && rec.Keywords == "" {
			if kw, err := annotator.Generate(ctx, rec); err == nil {
				rec.Keywords = kw
			}
		}

		if level >= extract.Verbose {
			fmt.Printf("== %s\n", filepath.Base(path))
			tr.Render(os.Stdout, level)
		}

		if _, err := writer.WriteRecord(doc.FilenameStem, rec); err != nil {
			logger.Warn("write failed", logger.String("path", path), logger.Err(err))
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", filepath.Base(path), err)
			failed++
			continue
		}

		if lib != nil {
			if _, err := lib.Insert(ctx, doc.FilenameStem, rec); err != nil {
				logger.Warn("library insert failed", logger.String("path", path), logger.Err(err))
			}
		}

		sheet = append(sheet, rec)
		done++
	}

	if len(sheet) > 0 {
		if _, err := writer.WriteCSV(sheet); err != nil {
			// 汇总表写不进去（常见原因：Excel 开着）只警告，不影响单档输出
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	fmt.Printf("%d processed, %d skipped, output in %s\n", done, failed, writer.Dir())
	return nil
}

// runInspect dumps numbered page text so rule files can be tuned against
// real layouts.
func runInspect(pdfs []string, pages, lines int) error {
	for _, path := range pdfs {
		doc, err := pdf.LoadDocument(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", filepath.Base(path), err)
			continue
		}
		fmt.Printf("== %s (%d pages)\n", filepath.Base(path), doc.PageCount())
		for p := 1; p <= pages && p <= doc.PageCount(); p++ {
			fmt.Printf("-- page %d\n", p)
			for i, ln := range strings.Split(doc.Page(p), "\n") {
				if i >= lines {
					fmt.Println("   ...")
					break
				}
				fmt.Printf("%4d| %s\n", i+1, ln)
			}
		}
	}
	return nil
}

func runServer(extractor *extract.Extractor, annotator *keywords.Annotator,
	cfg *config.ConfigManager, dbPath, listen string) error {

	if dbPath == "" {
		dbPath = cfg.GetDatabasePath()
	}
	lib, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer lib.Close()

	svc := server.New(extractor, lib, annotator, cfg.GetLibraryPageSize())
	logger.Info("HTTP API listening", logger.String("addr", listen))
	fmt.Printf("listening on %s\n", listen)
	return http.ListenAndServe(listen, svc.Router())
}

// collectPDFs resolves the input path to a sorted list of PDF files.
func collectPDFs(input string, recursive bool) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	var out []string
	if recursive {
		err = filepath.WalkDir(input, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isPDF(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && isPDF(e.Name()) {
				out = append(out, filepath.Join(input, e.Name()))
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func defaultOutputDir(input string) string {
	info, err := os.Stat(input)
	if err == nil && info.IsDir() {
		return filepath.Join(input, "abstracts")
	}
	return filepath.Join(filepath.Dir(input), "abstracts")
}
