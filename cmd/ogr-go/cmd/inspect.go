package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/geobridge/ogr-go/pkg/ogr/geometry"
)

var inspectFrom string

var inspectCmd = &cobra.Command{
	Use:   "inspect [geometry]",
	Short: "Show the structure of a geometry",
	Long: `Parses a geometry and lists its type, dimension, ownership and native
size, followed by one row per member read through borrowed views.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFrom, "from", "", "input format: wkt, wkb or geojson (default: detect)")
}

type geometryInfo struct {
	Type      string         `json:"type" yaml:"type"`
	Dimension int            `json:"dimension" yaml:"dimension"`
	Empty     bool           `json:"empty" yaml:"empty"`
	Owned     bool           `json:"owned" yaml:"owned"`
	SizeBytes int64          `json:"size_bytes" yaml:"size_bytes"`
	WKT       string         `json:"wkt" yaml:"wkt"`
	Members   []geometryInfo `json:"members,omitempty" yaml:"members,omitempty"`
}

func describe(g geometry.Geometry, depth int) (geometryInfo, error) {
	info := geometryInfo{
		Type:      g.Type().String(),
		Owned:     g.Owned(),
		SizeBytes: g.Size(),
	}
	var err error
	if info.Dimension, err = g.CoordinateDimension(); err != nil {
		return info, err
	}
	if info.Empty, err = g.IsEmpty(); err != nil {
		return info, err
	}
	if info.WKT, err = g.WKT(); err != nil {
		return info, err
	}
	if depth == 0 {
		return info, nil
	}
	children, err := geometry.Children(g)
	if err != nil {
		return info, err
	}
	for _, c := range children {
		ci, err := describe(c, depth-1)
		c.Dispose()
		if err != nil {
			return info, err
		}
		info.Members = append(info.Members, ci)
	}
	return info, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	input, err := readInput(args)
	if err != nil {
		return err
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	g, err := parseGeometry(s.lib, inspectFrom, input)
	if err != nil {
		return err
	}
	defer g.Dispose()

	info, err := describe(g, 1)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if done, err := printStructured(out, info); done {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header("Member", "Type", "Dim", "Empty", "Owned", "Size", "WKT")
	table.Append("-", info.Type, strconv.Itoa(info.Dimension), strconv.FormatBool(info.Empty),
		strconv.FormatBool(info.Owned), strconv.FormatInt(info.SizeBytes, 10), info.WKT)
	for i, m := range info.Members {
		table.Append(strconv.Itoa(i), m.Type, strconv.Itoa(m.Dimension), strconv.FormatBool(m.Empty),
			strconv.FormatBool(m.Owned), "-", m.WKT)
	}
	table.Render()
	fmt.Fprintf(out, "\nDriver: %s\n", s.lib.DriverVersion())
	return nil
}
