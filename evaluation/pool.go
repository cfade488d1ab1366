//
// Tencent is pleased to support the open source community by making trpc-dataeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataeval-go is licensed under the Apache License Version 2.0.
//
//

package evaluation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

type evaluationParam struct {
	idx        int
	ctx        context.Context
	evaluation *Evaluation
	evaluator  *datasetEvaluator
	reports    []*Report
	errs       []error
	wg         *sync.WaitGroup
}

func (p *evaluationParam) reset() {
	p.idx = 0
	p.ctx = nil
	p.evaluation = nil
	p.evaluator = nil
	p.reports = nil
	p.errs = nil
	p.wg = nil
}

var evaluationParamPool = &sync.Pool{
	New: func() any { return new(evaluationParam) },
}

func createEvaluationPool(size int) (*ants.PoolWithFunc, error) {
	if size <= 0 {
		return nil, errors.New("evaluation parallelism must be greater than 0")
	}
	pool, err := ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*evaluationParam)
		if !ok {
			panic("evaluation pool args type error")
		}
		wg := param.wg
		defer func() {
			wg.Done()
			param.reset()
			evaluationParamPool.Put(param)
		}()
		param.reports[param.idx], param.errs[param.idx] = param.evaluator.Evaluate(param.ctx, param.evaluation)
	})
	if err != nil {
		return nil, fmt.Errorf("create evaluation pool: %w", err)
	}
	return pool, nil
}

func (e *datasetEvaluator) evaluateParallel(ctx context.Context, evaluations []*Evaluation, reports []*Report, errs []error) {
	var wg sync.WaitGroup
	for idx, evaluation := range evaluations {
		wg.Add(1)
		param := evaluationParamPool.Get().(*evaluationParam)
		param.idx = idx
		param.ctx = ctx
		param.evaluation = evaluation
		param.evaluator = e
		param.reports = reports
		param.errs = errs
		param.wg = &wg
		if err := e.evaluationPool.Invoke(param); err != nil {
			wg.Done()
			errs[idx] = fmt.Errorf("submit evaluation task: %w", err)
			param.reset()
			evaluationParamPool.Put(param)
		}
	}
	wg.Wait()
}
