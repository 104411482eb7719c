package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
)

// txFunc 事务边界：fn 在单个事务内对 txRepo 执行全部写操作
type txFunc func(ctx context.Context, fn func(txRepo *repository.Repository) error) error

// runInTx 构造默认事务边界：fn 返回错误或 panic 时回滚，否则提交
func runInTx(repo *repository.Repository, logger *zap.Logger) txFunc {
	return func(ctx context.Context, fn func(txRepo *repository.Repository) error) error {
		tx, err := repo.BeginTx(ctx)
		if err != nil {
			logger.Error("开启事务失败", zap.Error(err))
			return err
		}
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
				panic(r)
			}
		}()

		if err := fn(repo.WithTx(tx)); err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit().Error; err != nil {
			logger.Error("提交事务失败", zap.Error(err))
			return err
		}
		return nil
	}
}
