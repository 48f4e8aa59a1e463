// Command sheafc checks sheaf programs and runs nearest-section
// projections from the command line.
//
// Restriction map values are supplied through a YAML bindings file: an
// ordered list of {name, rows} entries appended to the program context
// in file order. Assignments and edge constraints are flat YAML float
// lists.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/sbl8/cellular/compiler"
	"github.com/sbl8/cellular/sheaf"
)

const version = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:           "sheafc",
		Short:         "Compile and project cellular sheaves",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd(), newProjectCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sheafc:", err)
		os.Exit(1)
	}
}

func newCheckCmd() *cobra.Command {
	var mapsPath string

	cmd := &cobra.Command{
		Use:   "check <program.sheaf>",
		Short: "Parse and validate a sheaf program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := compileFile(args[0], mapsPath)
			if err != nil {
				return err
			}
			fmt.Printf("vertex stalks: %v\n", s.VertexStalks())
			fmt.Printf("edge stalks:   %v\n", s.EdgeStalks())
			fmt.Printf("coboundary:    %d x %d\n", s.TotalEdgeDim(), s.TotalVertexDim())
			return nil
		},
	}
	cmd.Flags().StringVar(&mapsPath, "maps", "", "YAML file with restriction map bindings")
	return cmd
}

func newProjectCmd() *cobra.Command {
	var (
		mapsPath       string
		inputPath      string
		constraintPath string
		tol            float64
		maxIter        int
	)

	cmd := &cobra.Command{
		Use:   "project <program.sheaf>",
		Short: "Project a vertex assignment onto the nearest section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := compileFile(args[0], mapsPath)
			if err != nil {
				return err
			}

			x, err := loadVector(inputPath)
			if err != nil {
				return err
			}
			var b []float64
			if constraintPath != "" {
				if b, err = loadVector(constraintPath); err != nil {
					return err
				}
			}

			out, err := s.NearestSectionOpts(x, b, sheaf.SolveOptions{Tol: tol, MaxIter: maxIter})
			if err != nil {
				return err
			}

			enc, err := yaml.Marshal(out)
			if err != nil {
				return err
			}
			fmt.Print(string(enc))
			return nil
		},
	}
	cmd.Flags().StringVar(&mapsPath, "maps", "", "YAML file with restriction map bindings")
	cmd.Flags().StringVar(&inputPath, "input", "", "YAML file with the vertex assignment")
	cmd.Flags().StringVar(&constraintPath, "constraint", "", "YAML file with the edge constraint")
	cmd.Flags().Float64Var(&tol, "tol", 0, "solver tolerance (0 = default)")
	cmd.Flags().IntVar(&maxIter, "max-iter", 0, "solver iteration cap (0 = default)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("sheafc - Cellular Sheaf Compiler v" + version)
		},
	}
}

// bindingSpec is one externally supplied restriction map in the YAML
// bindings file.
type bindingSpec struct {
	Name string      `yaml:"name"`
	Rows [][]float64 `yaml:"rows"`
}

func compileFile(path, mapsPath string) (*sheaf.CellularSheaf, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	bindings, err := loadBindings(mapsPath)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(string(src), bindings...)
}

func loadBindings(path string) ([]compiler.Binding, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var specs []bindingSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	bindings := make([]compiler.Binding, 0, len(specs))
	for _, bs := range specs {
		m, err := denseFromRows(bs.Name, bs.Rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		bindings = append(bindings, compiler.Binding{Name: bs.Name, Value: m})
	}
	return bindings, nil
}

func denseFromRows(name string, rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("binding %q has no matrix rows", name)
	}

	cols := len(rows[0])
	flat := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("binding %q: row %d has %d entries, want %d", name, i, len(r), cols)
		}
		flat = append(flat, r...)
	}
	return mat.NewDense(len(rows), cols, flat), nil
}

func loadVector(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v []float64
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
