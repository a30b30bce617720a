package pipeline

// Pipeline stages in the order they run.
const (
	StageExtracting = "extracting"
	StageDescribing = "describing"
	StageAssembling = "assembling"
	StageWriting    = "writing"
	StageComplete   = "complete"
)

// Progress is a snapshot posted between pipeline stages. Done/Total are frame
// counts during the describing stage.
type Progress struct {
	Stage   string
	Message string
	Done    int
	Total   int
}

// ProgressFunc receives progress snapshots. It is called from the pipeline
// goroutine; receivers that hand off to another goroutine must copy.
type ProgressFunc func(Progress)
