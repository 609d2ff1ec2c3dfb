package codec

import "testing"

// TestStructureSetup verifies the basic package structure is correct
func TestStructureSetup(t *testing.T) {
	// Test that we can create a codec
	codec := NewRecordCodec()
	if codec == nil {
		t.Error("NewRecordCodec returned nil")
	}

	// Test that we can create a record
	record := NewRecord([]byte("key"), []byte("value"))
	if record == nil {
		t.Error("NewRecord returned nil")
	}

	// Test basic field assignments
	if record.KeySize != 3 {
		t.Errorf("Expected KeySize 3, got %d", record.KeySize)
	}

	if record.ValueSize != 5 {
		t.Errorf("Expected ValueSize 5, got %d", record.ValueSize)
	}

	// Test size calculation
	expectedSize := 20 + 3 + 5 // header + key + value
	if record.Size() != expectedSize {
		t.Errorf("Expected size %d, got %d", expectedSize, record.Size())
	}
}

// TestEncodeDecodeWiring verifies Encode/Decode/Validate are wired end to end.
func TestEncodeDecodeWiring(t *testing.T) {
	codec := NewRecordCodec()

	encoded, err := codec.Encode([]byte("key"), []byte("value"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	record, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if err := record.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
