package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"assetcat/pkg/asset"
	"assetcat/pkg/catalog"
	"assetcat/pkg/config"
	"assetcat/pkg/models"
	"assetcat/pkg/server"
)

// CLITestSuite runs commands against a catalog in a temp directory
type CLITestSuite struct {
	suite.Suite
	tempDir string
	dbPath  string
}

func (s *CLITestSuite) SetupTest() {
	s.tempDir = s.T().TempDir()
	s.dbPath = filepath.Join(s.tempDir, "catalog.sqlite")
}

func (s *CLITestSuite) run(args ...string) (string, error) {
	cmd := NewRootCmd("test-v1.0.0")

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db-file", s.dbPath}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func (s *CLITestSuite) source(name, content string) string {
	path := filepath.Join(s.tempDir, "incoming", name)
	s.Require().NoError(os.MkdirAll(filepath.Dir(path), 0750))
	s.Require().NoError(os.WriteFile(path, []byte(content), 0600))
	return path
}

func (s *CLITestSuite) records(args ...string) []models.AssetRecord {
	out, err := s.run(append([]string{"get", "--json"}, args...)...)
	s.Require().NoError(err)

	var records []models.AssetRecord
	s.Require().NoError(json.Unmarshal([]byte(out), &records), out)
	return records
}

func (s *CLITestSuite) TestInit() {
	out, err := s.run("init")
	s.Require().NoError(err)
	s.Contains(out, "Created catalog in "+s.dbPath)

	out, err = s.run("init")
	s.Require().NoError(err)
	s.Contains(out, "already exists")
}

func (s *CLITestSuite) TestInitWriteConfig() {
	configPath := filepath.Join(s.tempDir, "assetcat.yaml")

	out, err := s.run("init", "--write-config", configPath)
	s.Require().NoError(err)
	s.Contains(out, "Created catalog in "+s.dbPath)
	s.Contains(out, "Wrote configuration to "+configPath)

	cfg, err := config.Load(configPath)
	s.Require().NoError(err)
	s.Equal(s.dbPath, cfg.DBFile)
	s.Equal("127.0.0.1:8080", cfg.Server.Addr)

	// The written file drives later commands without --db-file.
	cmd := NewRootCmd("test-v1.0.0")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--config", configPath, "init"})
	s.Require().NoError(cmd.Execute())
	s.Contains(buf.String(), "already exists in "+s.dbPath)

	_, err = s.run("init", "--write-config", configPath)
	s.ErrorContains(err, "refusing to overwrite")
}

func (s *CLITestSuite) TestAddAndGet() {
	src := s.source("calib.dat", "calibration constants")

	out, err := s.run("add", "-s", src, "--subsystem", "readout", "-l", "v1", "-f", "binary")
	s.Require().NoError(err)
	s.Contains(out, "as file_id 0")

	records := s.records("--subsystem", "readout")
	s.Require().Len(records, 1)
	s.Equal("calib.dat", records[0].Name)
	s.Equal("v1", records[0].Label)
	s.Equal("binary", records[0].Format)
	s.Equal(models.StatusValid, records[0].Status)

	out, err = s.run("get", "-l", "v1")
	s.Require().NoError(err)
	s.Contains(out, filepath.Join(s.tempDir, records[0].Path, "calib.dat"))

	out, err = s.run("get", "-l", "v1", "-p")
	s.Require().NoError(err)
	s.Contains(out, records[0].Checksum)

	s.Empty(s.records("-l", "v2"))
}

func (s *CLITestSuite) TestAddJSONFile() {
	src := s.source("map.txt", "channel map")
	metadata := filepath.Join(s.tempDir, "map.json")
	s.Require().NoError(os.WriteFile(metadata,
		[]byte(`{"subsystem": "trigger", "label": "v1", "description": "from file", "checksum": "bogus"}`), 0600))

	_, err := s.run("add", "-s", src, "--json-file", metadata, "-l", "v2", "-c", "also-bogus")
	s.Require().NoError(err)

	records := s.records()
	s.Require().Len(records, 1)
	s.Equal("trigger", records[0].Subsystem)
	s.Equal("v2", records[0].Label)
	s.Equal("from file", records[0].Description)
	s.Len(records[0].Checksum, 32)
}

func (s *CLITestSuite) TestAddErrors() {
	_, err := s.run("add", "-s", filepath.Join(s.tempDir, "missing.dat"), "--subsystem", "readout", "-l", "v1")
	s.ErrorIs(err, asset.ErrNotFound)

	src := s.source("calib.dat", "calibration constants")
	_, err = s.run("add", "-s", src, "-l", "v1")
	s.ErrorIs(err, catalog.ErrValidation)

	_, err = s.run("add", "-s", src, "--subsystem", "readout", "-l", "v1", "--status", "retired")
	s.ErrorIs(err, catalog.ErrValidation)

	_, err = s.run("add", "--subsystem", "readout", "-l", "v1")
	s.Error(err)

	s.Empty(s.records())
}

func (s *CLITestSuite) TestUpdate() {
	_, err := s.run("add", "-s", s.source("a.dat", "a"), "--subsystem", "readout", "-l", "v1")
	s.Require().NoError(err)
	_, err = s.run("add", "-s", s.source("b.dat", "b"), "--subsystem", "trigger", "-l", "v1")
	s.Require().NoError(err)

	out, err := s.run("update", "--subsystem", "readout", "--json-string", `{"status": "new version available"}`)
	s.Require().NoError(err)
	s.Contains(out, "Updated 1 asset(s)")

	records := s.records()
	s.Require().Len(records, 2)
	s.Equal(models.StatusNewVersionAvailable, records[0].Status)
	s.Equal(models.StatusValid, records[1].Status)

	sidecar, err := asset.ReadSidecar(filepath.Join(s.tempDir, records[0].Path), records[0].Name)
	s.Require().NoError(err)
	s.Equal(records[0], *sidecar)
}

func (s *CLITestSuite) TestUpdateRejected() {
	_, err := s.run("add", "-s", s.source("a.dat", "a"), "--subsystem", "readout", "-l", "v1")
	s.Require().NoError(err)

	_, err = s.run("update", "-l", "v1", "--json-string", `{"status": `)
	s.ErrorIs(err, catalog.ErrValidation)

	_, err = s.run("update", "-l", "v1", "--json-string", `{"path": "elsewhere"}`)
	s.ErrorIs(err, catalog.ErrValidation)

	_, err = s.run("update", "--json-string", `{"status": "expired"}`)
	s.ErrorIs(err, errFilterRequired)

	records := s.records()
	s.Require().Len(records, 1)
	s.Equal(models.StatusValid, records[0].Status)
	s.Equal(records[0].CatalogTS, records[0].UpdateTS)
}

func (s *CLITestSuite) TestRetire() {
	_, err := s.run("add", "-s", s.source("a.dat", "a"), "--subsystem", "readout", "-l", "v1")
	s.Require().NoError(err)

	out, err := s.run("retire", "-n", "a.dat")
	s.Require().NoError(err)
	s.Contains(out, "Retired 1 asset(s)")

	s.Len(s.records("--status", "expired"), 1)

	_, err = s.run("retire")
	s.ErrorIs(err, errFilterRequired)
}

func (s *CLITestSuite) TestGetCopyTo() {
	_, err := s.run("add", "-s", s.source("calib.dat", "calibration constants"), "--subsystem", "readout", "-l", "v1")
	s.Require().NoError(err)

	dest := filepath.Join(s.tempDir, "out")
	out, err := s.run("get", "-n", "calib.dat", "--copy-to", dest)
	s.Require().NoError(err)
	s.Contains(out, "Copied")

	data, err := os.ReadFile(filepath.Join(dest, "calib.dat"))
	s.Require().NoError(err)
	s.Equal("calibration constants", string(data))

	_, err = s.run("get", "-n", "calib.dat", "--copy-to", dest)
	s.ErrorIs(err, asset.ErrDestinationExists)
}

func (s *CLITestSuite) TestGetUnknownStatus() {
	_, err := s.run("get", "--status", "unknown")
	s.ErrorIs(err, catalog.ErrValidation)
}

func (s *CLITestSuite) TestConfigFile() {
	dbPath := filepath.Join(s.tempDir, "configured", "assets.sqlite")
	s.Require().NoError(os.MkdirAll(filepath.Dir(dbPath), 0750))
	configPath := filepath.Join(s.tempDir, "assetcat.yaml")
	s.Require().NoError(os.WriteFile(configPath, []byte("db_file: "+dbPath+"\nlog_level: warn\n"), 0600))

	cmd := NewRootCmd("test-v1.0.0")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", configPath, "init"})
	s.Require().NoError(cmd.Execute())

	s.FileExists(dbPath)
	s.NoFileExists(s.dbPath)
}

func (s *CLITestSuite) TestGetRemote() {
	remoteDir := filepath.Join(s.tempDir, "remote")
	s.Require().NoError(os.MkdirAll(remoteDir, 0750))
	store, err := catalog.Open(filepath.Join(remoteDir, "catalog.sqlite"))
	s.Require().NoError(err)
	defer store.Close()

	_, err = store.InsertFile(s.source("calib.dat", "calibration constants"), &models.AssetRecord{
		Subsystem: "readout",
		Label:     "v1",
	})
	s.Require().NoError(err)

	remote := httptest.NewServer(server.NewCatalogServer(store, "test-v1.0.0", time.Second).Handler())
	defer remote.Close()

	out, err := s.run("get", "--server", remote.URL, "--subsystem", "readout", "--json")
	s.Require().NoError(err)

	var records []models.AssetRecord
	s.Require().NoError(json.Unmarshal([]byte(out), &records), out)
	s.Require().Len(records, 1)
	s.Equal("calib.dat", records[0].Name)

	out, err = s.run("get", "--server", remote.URL)
	s.Require().NoError(err)
	s.Contains(out, remote.URL+"/assets/0/download")

	_, err = s.run("get", "--server", remote.URL, "--copy-to", s.tempDir)
	s.Error(err)

	s.NoFileExists(s.dbPath)
}

func (s *CLITestSuite) TestVersion() {
	out, err := s.run("version")
	s.Require().NoError(err)
	s.Equal("assetcat test-v1.0.0\n", out)
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}
