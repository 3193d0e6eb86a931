package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"

	"github.com/geobridge/ogr-go/pkg/ogr"
	"github.com/geobridge/ogr-go/pkg/ogr/geometry"
	"github.com/geobridge/ogr-go/pkg/ogr/metrics"
)

var (
	statsCount   int
	statsMembers int
	statsWait    time.Duration
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Run a lifecycle workload and report handle and memory statistics",
	Long: `Creates multipoints, reads their members through views, disposes half of
them explicitly and leaves the rest to the garbage collector. Reports handle
counters, native heap counters and process memory afterwards.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsCount, "count", 1000, "number of multipoints to create")
	statsCmd.Flags().IntVar(&statsMembers, "members", 8, "points per multipoint")
	statsCmd.Flags().DurationVar(&statsWait, "wait", 2*time.Second, "how long to wait for finalizers")
}

type statsReport struct {
	Handles     metrics.Snapshot `json:"handles" yaml:"handles"`
	Heap        *ogr.HeapStats   `json:"heap,omitempty" yaml:"heap,omitempty"`
	ProcessRSS  uint64           `json:"process_rss_bytes" yaml:"process_rss_bytes"`
	SystemUsed  uint64           `json:"system_used_bytes" yaml:"system_used_bytes"`
	SystemAvail uint64           `json:"system_available_bytes" yaml:"system_available_bytes"`
}

func runWorkload(lib *ogr.Library, count, members int) error {
	for i := range count {
		mp, err := geometry.NewMultiPoint(lib)
		if err != nil {
			return err
		}
		for j := range members {
			pt, err := geometry.NewPointXY(lib, float64(i), float64(j))
			if err != nil {
				return err
			}
			err = mp.Add(pt)
			pt.Dispose()
			if err != nil {
				return err
			}
		}
		views, err := mp.All()
		if err != nil {
			return err
		}
		for _, v := range views {
			if _, err := v.X(); err != nil {
				return err
			}
		}
		if i%2 == 0 {
			mp.Dispose()
		}
	}
	return nil
}

func waitForFinalizers(c *metrics.Collector, wait time.Duration) {
	deadline := time.Now().Add(wait)
	for c.Snapshot().Live > 0 && time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsCount < 0 || statsMembers < 0 {
		return errors.New("count and members must not be negative")
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := runWorkload(s.lib, statsCount, statsMembers); err != nil {
		return errors.Wrap(err, "workload")
	}
	waitForFinalizers(s.collector, statsWait)

	report := statsReport{Handles: s.collector.Snapshot()}
	if h, ok := s.lib.HeapStats(); ok {
		report.Heap = &h
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			report.ProcessRSS = mi.RSS
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		report.SystemUsed = vm.Used
		report.SystemAvail = vm.Available
	}

	out := cmd.OutOrStdout()
	if done, err := printStructured(out, report); done {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header("Metric", "Value")
	table.Append("handles created", strconv.FormatInt(report.Handles.Created, 10))
	table.Append("handles finalized", strconv.FormatInt(report.Handles.Finalized, 10))
	table.Append("handles live", strconv.FormatInt(report.Handles.Live, 10))
	table.Append("release failures", strconv.FormatInt(report.Handles.ReleaseFailures, 10))
	table.Append("owned native bytes", strconv.FormatInt(report.Handles.NativeBytes, 10))
	if report.Heap != nil {
		table.Append("heap allocated", strconv.FormatInt(report.Heap.Allocated, 10))
		table.Append("heap freed", strconv.FormatInt(report.Heap.Freed, 10))
		table.Append("heap live objects", strconv.FormatInt(report.Heap.Live, 10))
	}
	table.Append("process rss", strconv.FormatUint(report.ProcessRSS, 10))
	table.Append("system used", strconv.FormatUint(report.SystemUsed, 10))
	table.Append("system available", strconv.FormatUint(report.SystemAvail, 10))
	table.Render()
	fmt.Fprintf(out, "\nDriver: %s\n", s.lib.DriverVersion())
	return nil
}
