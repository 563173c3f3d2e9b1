package domain

// CreateDownloadRequest is the request body for starting tracked downloads.
type CreateDownloadRequest struct {
	URLs      []string `json:"urls" validate:"required,min=1,max=10,dive,required,url"`
	Format    string   `json:"format"`
	AudioOnly bool     `json:"audio_only"`
}

// CreateDownloadResponse lists the server task ids of the started downloads.
type CreateDownloadResponse struct {
	TaskIDs []string `json:"task_ids"`
}
