package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"assetcat/pkg/catalog"
	"assetcat/pkg/models"
	"assetcat/pkg/server"
)

// ClientTestSuite tests the client against a live catalog server
type ClientTestSuite struct {
	suite.Suite
	tempDir string
	store   *catalog.Store
	http    *httptest.Server
	client  *Client
}

func (s *ClientTestSuite) SetupTest() {
	s.tempDir = s.T().TempDir()

	var err error
	s.store, err = catalog.Open(filepath.Join(s.tempDir, "catalog.sqlite"), catalog.WithHostname("testhost"))
	s.Require().NoError(err)

	s.http = httptest.NewServer(server.NewCatalogServer(s.store, "test-v1.0.0", time.Second).Handler())
	s.client = New(s.http.URL+"/", WithRetry(1, time.Millisecond, 5*time.Millisecond))
}

func (s *ClientTestSuite) TearDownTest() {
	s.http.Close()
	s.store.Close()
}

func (s *ClientTestSuite) insert(name, content, subsystem string) *models.AssetRecord {
	path := filepath.Join(s.tempDir, "incoming", name)
	s.Require().NoError(os.MkdirAll(filepath.Dir(path), 0750))
	s.Require().NoError(os.WriteFile(path, []byte(content), 0600))

	record, err := s.store.InsertFile(path, &models.AssetRecord{Subsystem: subsystem, Label: "v1"})
	s.Require().NoError(err)
	return record
}

func (s *ClientTestSuite) TestList() {
	s.insert("a.dat", "a", "readout")
	s.insert("b.dat", "b", "trigger")

	records, err := s.client.List(context.Background(), nil)
	s.Require().NoError(err)
	s.Len(records, 2)

	records, err = s.client.List(context.Background(), map[string]string{"subsystem": "trigger", "label": "v1"})
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("b.dat", records[0].Name)
}

func (s *ClientTestSuite) TestListInvalidFilter() {
	_, err := s.client.List(context.Background(), map[string]string{"owner": "me"})
	s.ErrorIs(err, catalog.ErrValidation)

	var apiErr *APIError
	s.Require().True(errors.As(err, &apiErr))
	s.Equal(http.StatusBadRequest, apiErr.StatusCode)
	s.Contains(apiErr.Message, "unknown field")
}

func (s *ClientTestSuite) TestGet() {
	inserted := s.insert("calib.dat", "calibration", "readout")

	record, err := s.client.Get(context.Background(), inserted.ID)
	s.Require().NoError(err)
	s.Equal(*inserted, *record)

	_, err = s.client.Get(context.Background(), 42)
	s.ErrorIs(err, catalog.ErrAssetNotFound)
	s.True(IsNotFound(err))
}

func (s *ClientTestSuite) TestDownloadURL() {
	record := s.insert("calib.dat", "calibration", "readout")

	resp, err := http.Get(s.client.DownloadURL(record)) //nolint:noctx // test server
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(s.http.URL+"/assets/0/download", s.client.DownloadURL(record))
}

func (s *ClientTestSuite) TestUnreachable() {
	s.http.Close()

	_, err := s.client.List(context.Background(), nil)
	s.Error(err)
	s.False(IsNotFound(err))
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}
