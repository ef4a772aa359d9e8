package fs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/odf/pkg/core"
)

const fixture = `CRUISE_HEADER,
  PLATFORM = 'Ship A',
HISTORY_HEADER,
  CREATION_DATE = '01-JAN-2020 00:00:00.00',
HISTORY_HEADER,
  CREATION_DATE = '02-JAN-2020 00:00:00.00',
PARAMETER_HEADER,
  CODE = 'SYTM_01',
  TYPE = 'SYTM',
PARAMETER_HEADER,
  CODE = 'CNTR_01',
  TYPE = 'INTE',
PARAMETER_HEADER,
  CODE = 'TEMP_01',
  TYPE = 'DOUB',
 -- DATA --
'17-NOV-2019 12:30:00.00'  1  7.23
'17-NOV-2019 12:30:01.00'  2  7.5
`

func loadFixture(t *testing.T) *core.Dataset {
	t.Helper()
	ds, err := core.Read(strings.NewReader(fixture), "CTD_1.ODF", "", core.TableOptions{})
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	return ds
}

func TestSerializers(t *testing.T) {
	ds := loadFixture(t)
	serializers := DefaultSerializers()

	t.Run("json", func(t *testing.T) {
		data, err := serializers["json"].Serialize(ds)
		if err != nil {
			t.Fatalf("Serialize failed: %v", err)
		}
		var got Sidecar
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		checkSidecar(t, got)
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := serializers["yaml"].Serialize(ds)
		if err != nil {
			t.Fatalf("Serialize failed: %v", err)
		}
		var got Sidecar
		if err := yaml.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid yaml: %v", err)
		}
		checkSidecar(t, got)
	})

	t.Run("csv", func(t *testing.T) {
		data, err := serializers["csv"].Serialize(ds)
		if err != nil {
			t.Fatalf("Serialize failed: %v", err)
		}
		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("invalid csv: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header + 2 rows, got %d records", len(records))
		}
		if strings.Join(records[0], ",") != "SYTM_01,CNTR_01,TEMP_01" {
			t.Errorf("unexpected header %v", records[0])
		}
		want := []string{"2019-11-17T12:30:01Z", "2", "7.5"}
		if strings.Join(records[2], ",") != strings.Join(want, ",") {
			t.Errorf("expected %v, got %v", want, records[2])
		}
	})
}

func checkSidecar(t *testing.T, got Sidecar) {
	t.Helper()
	if got.Source != "CTD_1.ODF" || got.Rows != 2 {
		t.Errorf("unexpected sidecar summary: %+v", got)
	}
	if len(got.Columns) != 3 || got.Columns[0].Kind != "time" || got.Columns[1].Kind != "int" {
		t.Errorf("unexpected columns: %+v", got.Columns)
	}

	cruise, ok := got.Metadata["CRUISE_HEADER"].(map[string]any)
	if !ok {
		t.Fatalf("CRUISE_HEADER is %T, want a map", got.Metadata["CRUISE_HEADER"])
	}
	if cruise["PLATFORM"] != "Ship A" {
		t.Errorf("PLATFORM mismatch: %v", cruise["PLATFORM"])
	}

	history, ok := got.Metadata["HISTORY_HEADER"].([]any)
	if !ok || len(history) != 2 {
		t.Errorf("HISTORY_HEADER should stay a sequence of 2, got %#v", got.Metadata["HISTORY_HEADER"])
	}
}

func TestExporter(t *testing.T) {
	ds := loadFixture(t)
	dest := filepath.Join(t.TempDir(), "CTD_1.json")

	e := NewExporter("json", ".json", NewJSONSerializer())
	if e.Name() != "json" || e.Extension() != ".json" {
		t.Errorf("unexpected exporter identity %s %s", e.Name(), e.Extension())
	}
	if err := e.Export(context.TODO(), ds, dest); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Error("exported file is not valid JSON")
	}
}
