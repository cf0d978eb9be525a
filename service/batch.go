package service

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/wyfcoding/simplex/lpfile"
	"github.com/wyfcoding/simplex/xerrors"
)

// ItemError 批量请求中单个问题的错误。
type ItemError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

// BatchItem 批量结果中的一项，Result 与 Error 恰有一个非空。
type BatchItem struct {
	Index  int        `json:"index"`
	Result *Result    `json:"result,omitempty"`
	Error  *ItemError `json:"error,omitempty"`
}

// SolveBatch 并行求解多个文档，结果顺序与输入一致。
// 单个问题的错误记录在对应的 BatchItem 中，不会使整个批次失败。
func (s *Service) SolveBatch(ctx context.Context, docs []*lpfile.Document) ([]BatchItem, error) {
	_, cfg := s.settings()
	if len(docs) == 0 {
		return nil, ErrBatchSize.Detailf("batch is empty")
	}
	if cfg.MaxBatch > 0 && len(docs) > cfg.MaxBatch {
		return nil, ErrBatchSize.Detailf("%d problems, limit %d", len(docs), cfg.MaxBatch)
	}

	workers := cfg.MaxConcurrency
	if workers <= 0 || workers > len(docs) {
		workers = len(docs)
	}

	items := make([]BatchItem, len(docs))
	p := pool.New().WithMaxGoroutines(workers)
	for i, doc := range docs {
		p.Go(func() {
			items[i] = s.solveItem(ctx, i, doc)
		})
	}
	p.Wait()

	return items, nil
}

func (s *Service) solveItem(ctx context.Context, i int, doc *lpfile.Document) BatchItem {
	item := BatchItem{Index: i}
	if doc == nil {
		item.Error = &ItemError{Code: 400, Msg: "missing problem"}
		return item
	}

	res, err := s.Solve(ctx, doc)
	if err != nil {
		item.Error = toItemError(err)
		return item
	}
	item.Result = res
	return item
}

func toItemError(err error) *ItemError {
	if e, ok := xerrors.FromError(err); ok {
		return &ItemError{Code: e.Code, Msg: e.Message, Detail: e.Detail}
	}
	return &ItemError{Code: 500, Msg: err.Error()}
}
