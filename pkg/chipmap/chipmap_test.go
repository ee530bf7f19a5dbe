package chipmap

import (
	"errors"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cognicore/chipmap/internal/logging"
	"github.com/cognicore/chipmap/pkg/chipmap/catalog"
	"github.com/cognicore/chipmap/pkg/chipmap/classify"
	"github.com/cognicore/chipmap/pkg/chipmap/config"
	"github.com/cognicore/chipmap/pkg/chipmap/internalerr"
	"github.com/cognicore/chipmap/pkg/chipmap/report"
)

// TestEndToEnd walks the whole flow:
// 1. Configuration loading
// 2. Catalog reading and expansion
// 3. Classification
// 4. Report building
func TestEndToEnd(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := logging.NewLoggerFromCore(core)

	// === Phase 1: Setup Configuration ===

	loader := config.Loader{RulesPath: "config/testdata/rules.yaml", Logger: log}
	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	c := New(Options{Pipeline: comp.Pipeline, Reports: report.New(), Logger: log})

	// === Phase 2: Run the catalog ===

	f, err := os.Open("catalog/testdata/nvidia.txt")
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer f.Close()

	rep, cls, err := c.Run("nvidia.txt", f, catalog.FormatText)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// === Phase 3: Verify classification ===

	want := map[string]int{"NV34": 6, "NV40": 2, "GK107": 10, "GF108": 2, "GP104": 2}
	got := cls.Map()
	if len(got) != len(want) {
		t.Fatalf("expected %d plotted families, got %d: %v", len(want), len(got), cls.Markers())
	}
	for marker, n := range want {
		if len(got[marker]) != n {
			t.Errorf("%s: expected %d triples, got %d", marker, n, len(got[marker]))
		}
	}
	for marker, triples := range got {
		for _, tr := range triples {
			if tr.Epoch < 1 || tr.Epoch > 3 || tr.Series < 0 || tr.Level < 0 {
				t.Errorf("%s: triple out of range: %v", marker, tr)
			}
		}
	}

	// === Phase 4: Verify report ===

	if rep.Source != "nvidia.txt" {
		t.Errorf("expected source nvidia.txt, got %q", rep.Source)
	}
	wantTotals := report.Totals{Families: 7, Plotted: 5, Names: 26, Classified: 22, Unmatched: 4, Coverage: 22.0 / 26.0}
	if rep.Totals != wantTotals {
		t.Errorf("expected totals %+v, got %+v", wantTotals, rep.Totals)
	}
	if len(rep.Families) != 5 || rep.Families[0].Marker != "NV34" {
		t.Errorf("unexpected families: %+v", rep.Families)
	}

	if n := logs.FilterMessage("unclassifiable name").Len(); n != 4 {
		t.Errorf("expected 4 unclassifiable warnings, got %d", n)
	}
	summary := logs.FilterMessage("catalog indexed").All()
	if len(summary) != 1 {
		t.Fatalf("expected one run summary, got %d", len(summary))
	}
	if summary[0].ContextMap()["report"] != rep.ID {
		t.Errorf("summary should carry report id %s", rep.ID)
	}
}

func TestRunContinuationAcrossMarkerLines(t *testing.T) {
	c := New(Options{})

	src := "NVA\tGeForce GT 630, 640\nNVA\t710M\n"
	_, cls, err := c.Run("inline", strings.NewReader(src), catalog.FormatText)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []classify.Triple{{Epoch: 2, Series: 6, Level: 30}, {Epoch: 2, Series: 6, Level: 40}, {Epoch: 2, Series: 7, Level: 10}}
	got := cls.Map()["NVA"]
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("triple %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestRunMalformedCatalog(t *testing.T) {
	c := New(Options{})

	_, cls, err := c.Run("bad", strings.NewReader("NV40\tGeForce 6800 (Ultra, GT\n"), catalog.FormatText)
	if !errors.Is(err, internalerr.ErrUnbalancedGroup) {
		t.Fatalf("expected ErrUnbalancedGroup, got %v", err)
	}
	if cls != nil {
		t.Error("no classification should be returned on failure")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error should name the source: %v", err)
	}
}

func TestIndexHTML(t *testing.T) {
	c := New(Options{})

	f, err := os.Open("catalog/testdata/nvidia.html")
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer f.Close()

	idx, err := c.Index(f, catalog.FormatHTML)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if !idx.Has("NV34") || !idx.Has("NV10") {
		t.Errorf("expected NV34 and NV10 families, got %v", idx.Markers())
	}
}
