package store

// File is the result of a content read: whether the path exists, the
// revision (GitHub blob SHA) needed for a subsequent write, and the
// decoded content.
type File struct {
	Exists  bool
	SHA     string
	Content []byte
	RawURL  string
}

// Commit is the result of a content write.
type Commit struct {
	SHA    string
	Path   string
	RawURL string
}

type contentsResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA  string `json:"sha"`
		Path string `json:"path"`
	} `json:"content"`
}

type dispatchRequest struct {
	Ref string `json:"ref"`
}
