package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/sxpc/internal/cache"
	"github.com/funvibe/sxpc/internal/codegen"
	"github.com/funvibe/sxpc/internal/config"
	"github.com/funvibe/sxpc/internal/parser"
	"github.com/funvibe/sxpc/internal/pipeline"
)

// options collects the effective settings for one compiler run:
// command-line flags merged over sxpc.yaml over defaults.
type options struct {
	sourcePath string
	outputPath string
	useCache   bool
	verbose    bool
	printAsm   bool
}

func usage(stderr io.Writer) {
	fmt.Fprintf(stderr, "Usage: sxpc <source-file>\n  Output: %s\n", config.DefaultOutputFile)
}

// useColor decides whether error output gets ANSI color. Follows the
// NO_COLOR convention and requires stderr to be a terminal.
func useColor(stderr io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := stderr.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printError(stderr io.Writer, err error) {
	if useColor(stderr) {
		fmt.Fprintf(stderr, "\x1b[31mError: %s\x1b[0m\n", err)
		return
	}
	fmt.Fprintf(stderr, "Error: %s\n", err)
}

func parseArgs(args []string, stderr io.Writer) (*options, bool) {
	opts := &options{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--verbose":
			opts.verbose = true
		case arg == "--cache":
			opts.useCache = true
		case arg == "--print-asm":
			opts.printAsm = true
		case arg == "-o":
			if i+1 >= len(args) {
				fmt.Fprintln(stderr, "Error: -o requires a path")
				return nil, false
			}
			i++
			opts.outputPath = args[i]
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(stderr, "Error: unknown flag %q\n", arg)
			return nil, false
		default:
			if opts.sourcePath != "" {
				fmt.Fprintf(stderr, "Error: unexpected argument %q\n", arg)
				return nil, false
			}
			opts.sourcePath = arg
		}
	}

	if opts.sourcePath == "" {
		usage(stderr)
		return nil, false
	}

	return opts, true
}

// Run is the compiler driver: read the source, consult the cache,
// run the pipeline, write the output. Returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	opts, ok := parseArgs(args, stderr)
	if !ok {
		return 1
	}

	source, err := os.ReadFile(opts.sourcePath)
	if err != nil {
		printError(stderr, err)
		return 1
	}

	projectDir := filepath.Dir(opts.sourcePath)
	project, err := config.LoadProject(projectDir)
	if err != nil {
		printError(stderr, err)
		return 1
	}

	if opts.outputPath == "" {
		opts.outputPath = project.OutputPath()
	}
	opts.useCache = opts.useCache || project.Cache
	opts.verbose = opts.verbose || project.Verbose

	buildID := uuid.New().String()

	var buildCache *cache.Cache
	var cacheKey string
	if opts.useCache {
		buildCache, err = cache.Open(projectDir)
		if err != nil {
			printError(stderr, err)
			return 1
		}
		defer buildCache.Close()

		cacheKey = cache.Key(source)
		if asm, hit, err := buildCache.Lookup(cacheKey); err == nil && hit {
			if opts.verbose {
				fmt.Fprintf(stderr, "cache hit for %s\n", opts.sourcePath)
			}
			return writeOutput(asm, opts, stdout, stderr)
		}
	}

	if opts.verbose {
		fmt.Fprintf(stderr, "compiling %s (build %s)\n", opts.sourcePath, buildID)
	}

	ctx := pipeline.NewPipelineContext(string(source))
	ctx.FilePath = opts.sourcePath
	ctx.BuildID = buildID
	ctx.Verbose = opts.verbose

	p := pipeline.New(
		parser.Processor{},
		codegen.Processor{},
	)
	ctx = p.Run(ctx)

	if ctx.Failed() {
		printError(stderr, ctx.Errors[0])
		return 1
	}

	if buildCache != nil {
		if err := buildCache.Store(cacheKey, buildID, ctx.Assembly); err != nil {
			// A failed store does not fail the build.
			if opts.verbose {
				fmt.Fprintf(stderr, "cache store failed: %s\n", err)
			}
		}
	}

	return writeOutput(ctx.Assembly, opts, stdout, stderr)
}

func writeOutput(asm string, opts *options, stdout, stderr io.Writer) int {
	if err := os.WriteFile(opts.outputPath, []byte(asm), 0o644); err != nil {
		printError(stderr, err)
		return 1
	}
	if opts.printAsm {
		fmt.Fprint(stdout, asm)
	}
	if opts.verbose {
		fmt.Fprintf(stderr, "wrote %s\n", opts.outputPath)
	}
	return 0
}
