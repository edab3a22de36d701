package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/benreynwar/slvcodec/internal/config"
	"github.com/benreynwar/slvcodec/internal/decl"
	"github.com/benreynwar/slvcodec/internal/design"
	"github.com/benreynwar/slvcodec/internal/generator"
	"github.com/benreynwar/slvcodec/internal/policy"
	"github.com/benreynwar/slvcodec/internal/symmath"
	"github.com/benreynwar/slvcodec/internal/typs"
	"github.com/benreynwar/slvcodec/internal/validator"
)

const usage = `Usage: slvcodec <command> [flags] <declarations.json>

Commands:
  resolve   resolve the declarations and print type and port widths
  encode    encode port values into a bit string (-entity, -values)
  decode    decode a bit string into port values (-entity, -direction)
  generate  emit the <pkg>_slvcodec VHDL conversion packages
  check     run the design policy checks
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	var err error
	switch os.Args[1] {
	case "resolve":
		err = runResolve(os.Args[2:])
	case "encode":
		err = runEncode(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	case "generate":
		err = runGenerate(os.Args[2:])
	case "check":
		err = runCheck(os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// genericFlags collects repeated -generic name=value flags.
type genericFlags map[string]int

func (g genericFlags) String() string { return "" }

func (g genericFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("generic %q is not name=value", s)
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("generic %s: %w", name, err)
	}
	g[name] = v
	return nil
}

// loadDesign loads, validates and resolves the declaration files named in
// the config plus the given paths.
func loadDesign(paths []string) (*design.Design, *config.Config, error) {
	root := "."
	if len(paths) > 0 {
		root = filepath.Dir(paths[0])
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, err
	}

	v, err := validator.New()
	if err != nil {
		return nil, nil, err
	}
	merged := &decl.Tables{}
	for _, path := range append(append([]string{}, cfg.Declarations...), paths...) {
		tables, err := decl.Load(path)
		if err != nil {
			return nil, nil, err
		}
		if err := v.Validate(tables); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		merged.Packages = append(merged.Packages, tables.Packages...)
		merged.Entities = append(merged.Entities, tables.Entities...)
	}

	reg := symmath.DefaultRegistry()
	d, err := design.Resolve(merged, reg, design.Options{Strict: cfg.IsStrict(), ClockNames: cfg.ClockNames})
	if err != nil {
		return nil, nil, err
	}
	return d, cfg, nil
}

func entityGenerics(d *design.Design, cfg *config.Config, name string, flags genericFlags) (*design.Entity, typs.Generics, error) {
	e, ok := d.Entities[name]
	if !ok {
		return nil, nil, fmt.Errorf("entity %s not found", name)
	}
	supplied := cfg.GenericsFor(name)
	if supplied == nil {
		supplied = typs.Generics{}
	}
	for gn, gv := range flags {
		supplied[gn] = gv
	}
	generics, err := e.GenericValues(supplied)
	if err != nil {
		return nil, nil, err
	}
	return e, generics, nil
}

func runResolve(args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("resolve needs at least one declarations file")
	}
	d, _, err := loadDesign(fs.Args())
	if err != nil {
		return err
	}

	var pkgNames []string
	for name := range d.Packages {
		if !isBuiltin(name) {
			pkgNames = append(pkgNames, name)
		}
	}
	sort.Strings(pkgNames)
	for _, name := range pkgNames {
		p := d.Packages[name]
		fmt.Printf("package %s\n", name)
		var typeNames []string
		for tn := range p.Types {
			typeNames = append(typeNames, tn)
		}
		sort.Strings(typeNames)
		for _, tn := range typeNames {
			t := p.Types[tn]
			if t.Width() == nil {
				fmt.Printf("  type %s: unconstrained\n", tn)
			} else {
				fmt.Printf("  type %s: %s bits\n", tn, symmath.Render(t.Width()))
			}
		}
	}

	var entityNames []string
	for name := range d.Entities {
		entityNames = append(entityNames, name)
	}
	sort.Strings(entityNames)
	for _, name := range entityNames {
		e := d.Entities[name]
		fmt.Printf("entity %s\n", name)
		for _, p := range e.Ports {
			fmt.Printf("  port %s: %s %s (%s bits)\n", p.Name, p.Direction, p.Type.Name(), symmath.Render(p.Type.Width()))
		}
	}
	return nil
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	entity := fs.String("entity", "", "entity whose inputs to encode")
	values := fs.String("values", "", "JSON file of port values (default: one object per stdin line)")
	generics := genericFlags{}
	fs.Var(generics, "generic", "generic value as name=value (repeatable)")
	fs.Parse(args)
	if *entity == "" || fs.NArg() < 1 {
		return fmt.Errorf("encode needs -entity and a declarations file")
	}
	d, cfg, err := loadDesign(fs.Args())
	if err != nil {
		return err
	}
	e, resolved, err := entityGenerics(d, cfg, *entity, generics)
	if err != nil {
		return err
	}

	if *values != "" {
		data, err := os.ReadFile(*values)
		if err != nil {
			return err
		}
		var inputs map[string]any
		if err := json.Unmarshal(data, &inputs); err != nil {
			return fmt.Errorf("parsing values: %w", err)
		}
		slv, err := e.InputsToSlv(inputs, resolved)
		if err != nil {
			return err
		}
		fmt.Println(slv)
		return nil
	}
	return encodeStream(e, resolved, os.Stdin, os.Stdout)
}

// encodeStream encodes one JSON object of port values per input line,
// writing one bit string per line.
func encodeStream(e *design.Entity, generics typs.Generics, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var inputs map[string]any
		if err := json.Unmarshal([]byte(text), &inputs); err != nil {
			return fmt.Errorf("parsing values on line %d: %w", line, err)
		}
		slv, err := e.InputsToSlv(inputs, generics)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		fmt.Fprintln(w, slv)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading values: %w", err)
	}
	return nil
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	entity := fs.String("entity", "", "entity whose ports to decode")
	direction := fs.String("direction", "out", "which ports to decode: in or out")
	generics := genericFlags{}
	fs.Var(generics, "generic", "generic value as name=value (repeatable)")
	fs.Parse(args)
	if *entity == "" || fs.NArg() < 2 {
		return fmt.Errorf("decode needs -entity, a declarations file and a bit string")
	}
	d, cfg, err := loadDesign(fs.Args()[:fs.NArg()-1])
	if err != nil {
		return err
	}
	e, resolved, err := entityGenerics(d, cfg, *entity, generics)
	if err != nil {
		return err
	}

	slv := fs.Arg(fs.NArg() - 1)
	var values map[string]any
	switch *direction {
	case design.DirIn:
		values, err = e.InputsFromSlv(slv, resolved)
	case design.DirOut:
		values, err = e.OutputsFromSlv(slv, resolved)
	default:
		return fmt.Errorf("direction must be in or out, not %q", *direction)
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(values)
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	outDir := fs.String("outdir", "", "write <pkg>_slvcodec.vhd files here (default: stdout)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("generate needs at least one declarations file")
	}
	d, _, err := loadDesign(fs.Args())
	if err != nil {
		return err
	}

	var names []string
	for name := range d.Packages {
		if !isBuiltin(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		text, err := generator.PackageText(d.Packages[name])
		if err != nil {
			return err
		}
		if *outDir == "" {
			fmt.Print(text)
			continue
		}
		path := filepath.Join(*outDir, name+"_slvcodec.vhd")
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("check needs at least one declarations file")
	}
	d, cfg, err := loadDesign(fs.Args())
	if err != nil {
		return err
	}
	engine, err := policy.New(cfg.PolicyDir)
	if err != nil {
		return err
	}
	result, err := engine.Evaluate(policy.BuildInput(d))
	if err != nil {
		return err
	}
	for _, v := range result.Violations {
		fmt.Printf("%s: %s: %s: %s\n", v.Severity, v.Entity, v.Rule, v.Message)
	}
	fmt.Printf("%d findings (%d errors, %d warnings, %d info)\n",
		result.Summary.TotalViolations, result.Summary.Errors,
		result.Summary.Warnings, result.Summary.Info)
	if result.Summary.Errors > 0 {
		os.Exit(1)
	}
	return nil
}

func isBuiltin(name string) bool {
	for _, std := range design.StandardPackages {
		if name == std {
			return true
		}
	}
	return false
}
