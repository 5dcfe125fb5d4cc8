package resumes

import "time"

type resumeResponse struct {
	ResumeID   string    `json:"resumeId"`
	FileName   string    `json:"fileName"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type currentResponse struct {
	ResumeID   *string    `json:"resumeId"`
	FileName   *string    `json:"fileName"`
	UploadedAt *time.Time `json:"uploadedAt"`
	URL        *string    `json:"url"`
}

func toResponse(res Resume) resumeResponse {
	return resumeResponse{
		ResumeID:   res.ID,
		FileName:   res.FileName,
		UploadedAt: res.CreatedAt,
	}
}

func toCurrentResponse(res Resume, url string) currentResponse {
	return currentResponse{
		ResumeID:   &res.ID,
		FileName:   &res.FileName,
		UploadedAt: &res.CreatedAt,
		URL:        &url,
	}
}
