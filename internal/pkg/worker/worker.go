package worker

import (
	"context"
	"sync"
	"time"

	"learnhub/pkg/logger"

	"go.uber.org/zap"
)

// Task 异步任务，Run 返回错误时按 MaxRetry 重试
type Task struct {
	Name  string
	Run   func(ctx context.Context) error
	Retry int // 已重试次数
}

// WorkerPool 固定数量的 worker 消费任务队列，失败任务进入重试队列，
// 超过最大重试次数或队列已满时记录到死信日志
type WorkerPool struct {
	TaskQueue    chan Task
	RetryQueue   chan Task // 重试队列
	WorkerNum    int
	MaxRetry     int           // 最大重试次数
	RetryDelay   time.Duration // 第 n 次重试延迟 n*RetryDelay
	OnDeadLetter func(task Task, err error)

	ctx      context.Context
	quit     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewWorkerPool(workerNum int, bufferSize int) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize <= 1 {
		bufferSize = 2
	}
	return &WorkerPool{
		TaskQueue:  make(chan Task, bufferSize),
		RetryQueue: make(chan Task, bufferSize/2),
		WorkerNum:  workerNum,
		MaxRetry:   3, // 最多重试3次
		RetryDelay: time.Second,
		quit:       make(chan struct{}),
	}
}

// Start 启动 worker，ctx 会传给每个任务
func (p *WorkerPool) Start(ctx context.Context) {
	p.ctx = ctx
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	// 启动重试处理协程
	p.wg.Add(1)
	go p.retryWorker()
	logger.Log.Info("worker pool started", zap.Int("workers", p.WorkerNum), zap.Int("max_retry", p.MaxRetry))
}

// Stop 停止接收新任务，处理完已入队的任务后返回
// 待重试的任务直接进入死信
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
		p.wg.Wait()
		logger.Log.Info("worker pool stopped")
	})
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			// 处理剩余任务，不再重试
			for {
				select {
				case task := <-p.TaskQueue:
					if err := p.run(task); err != nil {
						p.logFailedTask(task, err)
					}
				default:
					return
				}
			}
		case task := <-p.TaskQueue:
			if err := p.run(task); err != nil {
				p.handleFailure(id, task, err)
			}
		}
	}
}

func (p *WorkerPool) run(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("task panicked", zap.String("task", task.Name), zap.Any("panic", r))
			err = errPanic
		}
	}()
	return task.Run(p.ctx)
}

func (p *WorkerPool) handleFailure(id int, task Task, err error) {
	logger.Log.Warn("task failed",
		zap.Int("worker", id),
		zap.String("task", task.Name),
		zap.Int("retry", task.Retry),
		zap.Error(err),
	)

	// 如果未达到最大重试次数，加入重试队列
	if task.Retry >= p.MaxRetry {
		p.logFailedTask(task, err)
		return
	}
	task.Retry++
	select {
	case p.RetryQueue <- task:
	default:
		p.logFailedTask(task, err)
	}
}

func (p *WorkerPool) retryWorker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			for {
				select {
				case task := <-p.RetryQueue:
					p.logFailedTask(task, errStopped)
				default:
					return
				}
			}
		case task := <-p.RetryQueue:
			// 延迟重试，避免立即重试
			timer := time.NewTimer(time.Duration(task.Retry) * p.RetryDelay)
			select {
			case <-timer.C:
			case <-p.quit:
				timer.Stop()
				p.logFailedTask(task, errStopped)
				continue
			}

			// 重新加入主队列
			select {
			case p.TaskQueue <- task:
			default:
				p.logFailedTask(task, errQueueFull)
			}
		}
	}
}

func (p *WorkerPool) logFailedTask(task Task, err error) {
	logger.Log.Error("task dead-lettered",
		zap.String("task", task.Name),
		zap.Int("retry", task.Retry),
		zap.Error(err),
	)
	if p.OnDeadLetter != nil {
		p.OnDeadLetter(task, err)
	}
}

// AddTask 非阻塞入队，队列已满或已停止时记录死信并返回 false
func (p *WorkerPool) AddTask(task Task) bool {
	select {
	case <-p.quit:
		p.logFailedTask(task, errStopped)
		return false
	default:
	}

	select {
	case p.TaskQueue <- task:
		return true
	default:
		p.logFailedTask(task, errQueueFull)
		return false
	}
}
