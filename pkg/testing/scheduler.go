package testing

// ManualScheduler queues tasks until they are run explicitly.
type ManualScheduler struct {
	tasks []func()
}

// Schedule queues task. Pass the method value as a scheduler:
//
//	sched := &maptest.ManualScheduler{}
//	a := symbol.NewApplier(symbol.WithScheduler(sched.Schedule))
func (s *ManualScheduler) Schedule(task func()) {
	s.tasks = append(s.tasks, task)
}

// Pending returns the number of queued tasks.
func (s *ManualScheduler) Pending() int {
	return len(s.tasks)
}

// RunAll runs queued tasks in order, including tasks queued while running.
func (s *ManualScheduler) RunAll() {
	for len(s.tasks) > 0 {
		task := s.tasks[0]
		s.tasks = s.tasks[1:]
		task()
	}
}
