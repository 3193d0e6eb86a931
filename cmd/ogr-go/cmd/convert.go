package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/geobridge/ogr-go/pkg/ogr"
	"github.com/geobridge/ogr-go/pkg/ogr/geometry"
)

var (
	convertFrom string
	convertTo   string
)

var convertCmd = &cobra.Command{
	Use:   "convert [geometry]",
	Short: "Convert a geometry between WKT, WKB (hex) and GeoJSON",
	Long: `Reads a geometry from the argument or stdin and writes it in another
format. The input format is detected when --from is not given: input starting
with '{' is GeoJSON, hexadecimal input is WKB, anything else is WKT.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertFrom, "from", "", "input format: wkt, wkb or geojson (default: detect)")
	convertCmd.Flags().StringVar(&convertTo, "to", "geojson", "output format: wkt, wkb or geojson")
}

func runConvert(cmd *cobra.Command, args []string) error {
	input, err := readInput(args)
	if err != nil {
		return err
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	g, err := parseGeometry(s.lib, convertFrom, input)
	if err != nil {
		return err
	}
	defer g.Dispose()

	out, err := formatGeometry(g, convertTo)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func detectFormat(input string) string {
	switch {
	case strings.HasPrefix(input, "{"):
		return "geojson"
	case isHex(input):
		return "wkb"
	default:
		return "wkt"
	}
}

func isHex(s string) bool {
	if s == "" || len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func parseGeometry(lib *ogr.Library, format, input string) (geometry.Geometry, error) {
	input = strings.TrimSpace(input)
	if format == "" {
		format = detectFormat(input)
	}
	switch strings.ToLower(format) {
	case "wkt":
		return geometry.FromWKT(lib, input)
	case "wkb":
		b, err := hex.DecodeString(input)
		if err != nil {
			return nil, errors.Wrap(err, "decode wkb hex")
		}
		return geometry.FromWKB(lib, b)
	case "geojson", "json":
		return geometry.FromGeoJSON(lib, input)
	default:
		return nil, errors.Newf("unknown input format %q", format)
	}
}

func formatGeometry(g geometry.Geometry, format string) (string, error) {
	switch strings.ToLower(format) {
	case "wkt":
		return g.WKT()
	case "wkb":
		b, err := g.WKB()
		if err != nil {
			return "", err
		}
		return strings.ToUpper(hex.EncodeToString(b)), nil
	case "geojson", "json":
		return g.GeoJSON()
	default:
		return "", errors.Newf("unknown output format %q", format)
	}
}
