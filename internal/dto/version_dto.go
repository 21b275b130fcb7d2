package dto

// VersionDTO 服务端版本信息
type VersionDTO struct {
	Version   string `json:"version"`   // 服务版本号
	GitTag    string `json:"gitTag"`    // Git 标签
	BuildTime string `json:"buildTime"` // 构建时间
}
