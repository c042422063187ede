package shared

const (
	SegmentExt         = ".backup"
	MaxSegments        = 512
	DefaultSegmentSize = int64(1) << 31

	NameLenWidth    = 2
	PayloadLenWidth = 5
	RecordOverhead  = NameLenWidth + PayloadLenWidth

	// RunNameLayout is fixed width so that run names sort chronologically.
	RunNameLayout = "2006-01-02_15-04-05.000"
)
