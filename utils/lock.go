package utils

import "sync"

func WrapLock(lock sync.Locker, fn func()) {
	lock.Lock()
	defer lock.Unlock()

	fn()
}

// WrapRLock 读锁版本，fn 内不能修改受保护的数据
func WrapRLock(lock *sync.RWMutex, fn func()) {
	lock.RLock()
	defer lock.RUnlock()

	fn()
}
