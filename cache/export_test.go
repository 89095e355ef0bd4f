package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestExporter_Export(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(3600)
	c.Set(ctx, "t_key2", "value2")
	c.Set(ctx, "t_key1", "value1")
	c.Set(ctx, "unrelated", "x")

	exporter := NewExporter(c)
	var buf bytes.Buffer

	err := exporter.Export(ctx, &buf, map[string]string{"method": "gtxFreeAPI"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var export ExportFormat
	if err := json.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}

	if export.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", export.Version)
	}

	if len(export.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(export.Entries))
	}
	if export.Entries[0].Key != "t_key1" {
		t.Errorf("Entries should be sorted by key, got %v", export.Entries)
	}

	if export.Metadata["method"] != "gtxFreeAPI" {
		t.Errorf("Expected metadata method=gtxFreeAPI, got %v", export.Metadata)
	}
}

func TestExporter_Unsupported(t *testing.T) {
	var s struct{ Store }
	s.Store = Nop{}

	err := NewExporter(s).Export(context.Background(), &bytes.Buffer{}, nil)
	if err == nil {
		t.Error("Expected error for a cache that cannot list entries")
	}
}

func TestImporter_Import(t *testing.T) {
	jsonData := `{
		"version": "1.0",
		"exported_at": "2024-01-01T00:00:00Z",
		"entries": [
			{"key": "t_key1", "value": "value1"},
			{"key": "t_key2", "value": "value2"},
			{"key": "bogus", "value": "value3"}
		],
		"metadata": {"method": "deepl"}
	}`

	ctx := context.Background()
	c := NewInMemoryCache(3600)
	importer := NewImporter(c)

	result, err := importer.Import(ctx, strings.NewReader(jsonData))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}
	if result.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", result.Failed)
	}

	if val, ok := c.Get(ctx, "t_key1"); !ok || val != "value1" {
		t.Errorf("t_key1 not found or wrong value: %s", val)
	}
}

func TestExportImport_RoundTripSQLite(t *testing.T) {
	ctx := context.Background()
	src := NewInMemoryCache(3600)
	src.Set(ctx, "t_hello_de_en_deepl", "Hallo")
	src.Set(ctx, "t_world_de_en_deepl", "Welt")

	file := filepath.Join(t.TempDir(), "cache.json")
	if err := NewExporter(src).ExportToFile(ctx, file, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Close()

	result, err := NewImporter(dst).ImportFromFile(ctx, file)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}
	if val, ok := dst.Get(ctx, "t_hello_de_en_deepl"); !ok || val != "Hallo" {
		t.Errorf("round trip lost entry, got %q", val)
	}
}

func TestExporter_EmptyCache(t *testing.T) {
	c := NewInMemoryCache(3600)
	exporter := NewExporter(c)

	var buf bytes.Buffer
	if err := exporter.Export(context.Background(), &buf, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var export ExportFormat
	json.Unmarshal(buf.Bytes(), &export)

	if len(export.Entries) != 0 {
		t.Errorf("Expected 0 entries for empty cache, got %d", len(export.Entries))
	}
}

func TestImporter_InvalidJSON(t *testing.T) {
	importer := NewImporter(NewInMemoryCache(3600))

	if _, err := importer.Import(context.Background(), strings.NewReader("invalid json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}
