package domain

// VulnerabilityRecord is one input row: a security fix commit to mine
// for vulnerable/fixed code pairs.
type VulnerabilityRecord struct {
	CVEID      string
	RepoURL    string
	CommitHash string
}

// ChangeKind classifies how a path differs between a commit and its
// first parent.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeDeleted
	ChangeRenamed
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	case ChangeDeleted:
		return "deleted"
	case ChangeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// ChangeEntry describes one path touched by a commit. For modifications
// PathBefore and PathAfter are equal; for additions PathBefore is empty,
// for deletions PathAfter is empty.
type ChangeEntry struct {
	PathBefore string
	PathAfter  string
	Kind       ChangeKind
}

// ChangeSet is the result of diffing a commit against its first parent.
// ParentHash is empty when the commit is a root commit, in which case
// Entries is empty too.
type ChangeSet struct {
	CommitHash string
	ParentHash string
	Entries    []ChangeEntry
}

// Dataset labels. A pair always consists of one record of each.
const (
	LabelVulnerable = 0
	LabelFixed      = 1
)

// CodeRecord is one output row: a whole-file snapshot tagged with the
// vulnerability identifier and a vulnerable/fixed label.
type CodeRecord struct {
	CVEID    string
	FilePath string
	Code     string
	Label    int
}
