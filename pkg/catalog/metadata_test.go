package catalog

import (
	"path/filepath"

	"assetcat/pkg/models"
)

// TestMetadataFromMap tests building insert metadata from user values.
func (s *StoreTestSuite) TestMetadataFromMap() {
	record, err := MetadataFromMap(map[string]any{
		"subsystem":   "readout",
		"label":       "v1",
		"status":      "new version available",
		"checksum":    "ignored",
		"size":        float64(12),
		"description": "pedestals",
	})
	s.Require().NoError(err)
	s.Equal("readout", record.Subsystem)
	s.Equal("v1", record.Label)
	s.Equal(models.StatusNewVersionAvailable, record.Status)
	s.Equal("pedestals", record.Description)
	s.Empty(record.Checksum)
	s.Zero(record.Size)
}

// TestMetadataFromMapInvalid tests rejected metadata.
func (s *StoreTestSuite) TestMetadataFromMapInvalid() {
	testCases := map[string]map[string]any{
		"unknown field": {"owner": "me"},
		"bad status":    {"status": "gone"},
		"wrong type":    {"label": 3},
	}

	for name, values := range testCases {
		s.Run(name, func() {
			_, err := MetadataFromMap(values)
			s.ErrorIs(err, ErrValidation)
		})
	}
}

// TestParseMetadata tests decoding a metadata document and inserting with it.
func (s *StoreTestSuite) TestParseMetadata() {
	md, err := ParseMetadata([]byte(`{"subsystem": "trigger", "label": "v3", "format": "text"}`))
	s.Require().NoError(err)

	record, err := s.store.InsertFile(s.source("trig.txt", "trigger map"), md)
	s.Require().NoError(err)
	s.Equal("trigger", record.Subsystem)
	s.Equal("text", record.Format)
	s.Equal(models.StatusValid, record.Status)

	_, err = ParseMetadata([]byte(`[1, 2]`))
	s.ErrorIs(err, ErrValidation)
}

// TestCount tests counting cataloged rows.
func (s *StoreTestSuite) TestCount() {
	count, err := s.store.Count()
	s.Require().NoError(err)
	s.Zero(count)

	s.insert("a.dat", "a", "readout", "v1")
	s.insert("b.dat", "b", "readout", "v1")

	count, err = s.store.Count()
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}

// TestOpenWithoutSchema tests that WithoutSchema defers table creation.
func (s *StoreTestSuite) TestOpenWithoutSchema() {
	store, err := Open(filepath.Join(s.tempDir, "deferred.sqlite"), WithoutSchema())
	s.Require().NoError(err)
	defer store.Close()

	exists, err := store.hasTable()
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(store.CreateSchema())
	s.ErrorIs(store.CreateSchema(), ErrSchemaConflict)
}
