package pagegrab

import "fmt"

// Stage names a step of a pipeline.
type Stage string

// Stage constants.
const (
	StageFetch     Stage = "fetch"
	StageArchive   Stage = "archive"
	StageExtract   Stage = "extract"
	StageWrite     Stage = "write"
	StageSVG       Stage = "svg"
	StageDirectory Stage = "directory"
	StageScan      Stage = "scan"
	StageDownload  Stage = "download"
	StageLedger    Stage = "ledger"
)

// StageError records a failure in one pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// IconReport is the outcome of one icon pipeline run.
type IconReport struct {
	URL         string
	Icons       []*Icon
	Counts      TagCounts
	ArchivePath string   // set only when the page snapshot was written
	OutputPath  string   // set only when the icons file was written
	SVGPaths    []string // set only when SVG export ran
	Failures    []*StageError
}

// Failed reports whether any stage failed.
func (r *IconReport) Failed() bool {
	return len(r.Failures) > 0
}

// DownloadResult is the outcome of downloading a single image.
type DownloadResult struct {
	Ref    ImageRef
	Stored *StoredImage

	// Skipped is set when the image was not attempted; SkipReason says why.
	Skipped    bool
	SkipReason string

	Err error
}

// ImageReport is the outcome of one image pipeline run.
type ImageReport struct {
	RunID     string
	URL       string
	Folder    string
	Matched   int
	Downloads []*DownloadResult
	Failures  []*StageError
}

// Downloaded returns the number of images written to the folder.
func (r *ImageReport) Downloaded() int {
	var n int
	for _, d := range r.Downloads {
		if d.Stored != nil {
			n++
		}
	}
	return n
}

// Failed reports whether any stage or download failed.
func (r *ImageReport) Failed() bool {
	return len(r.Failures) > 0
}
