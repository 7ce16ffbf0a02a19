package service

import (
	"strings"

	"github.com/SantanaPablo/Manuales-IA/internal/dto"
	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
)

type ILogService interface {
	List(req *dto.LogListRequest) ([]dto.LogListResponse, error)
}

type logService struct {
	logger logger.ILogger
}

func NewLogService(log logger.ILogger) ILogService {
	return &logService{logger: log}
}

func (s *logService) List(req *dto.LogListRequest) ([]dto.LogListResponse, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 100
	}
	// zap writes capitalised levels
	entries, err := s.logger.GetLogs(strings.ToUpper(req.Level), limit, req.Offset)
	if err != nil {
		return nil, err
	}

	out := make([]dto.LogListResponse, len(entries))
	for i, e := range entries {
		out[i] = dto.LogListResponse{
			Id:        e.Id,
			Level:     e.Level,
			Module:    e.Module,
			Message:   e.Message,
			Timestamp: e.Timestamp,
			Details:   e.Details,
		}
	}
	return out, nil
}
