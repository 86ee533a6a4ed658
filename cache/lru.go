/**
 * Copyright 2024 MaxPoint Interactive, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cache

import (
	"container/list"
	"fmt"
	"sync"
)

const maxPreallocateCapacity = 10000

type entry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a Least Recently Used cache with a fixed capacity.
// It is safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	elements map[K]*list.Element
	order    *list.List
}

// NewLRU creates a new LRU cache
//
// Parameters:
//   - `capacity` - a positive integer indicating the max capacity of this cache
func NewLRU[K comparable, V any](capacity int) (*LRU[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be a positive integer")
	}
	c := &LRU[K, V]{
		capacity: capacity,
		order:    list.New(),
	}
	if capacity <= maxPreallocateCapacity {
		c.elements = make(map[K]*list.Element, capacity)
	} else {
		c.elements = make(map[K]*list.Element)
	}
	return c, nil
}

// Get returns the value associated with key and marks it as most recently used
func (c *LRU[K, V]) Get(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	element, ok := c.elements[key]
	if !ok {
		return value, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*entry[K, V]).value, true
}

// Put associates value with key, evicting the least recently used entry
// when the cache is full.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, value)
}

func (c *LRU[K, V]) put(key K, value V) {
	if element, ok := c.elements[key]; ok {
		element.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(element)
		return
	}
	// evict first to avoid growing the map past capacity
	if c.order.Len() == c.capacity {
		if back := c.order.Back(); back != nil {
			evicted := c.order.Remove(back).(*entry[K, V])
			delete(c.elements, evicted.key)
		}
	}
	c.elements[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
}

// GetOrLoad returns the cached value for key, calling load and caching its
// result on a miss. Errors from load are not cached.
func (c *LRU[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load(key)
	if err != nil {
		return v, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if element, ok := c.elements[key]; ok {
		// a concurrent load won, keep its value
		c.order.MoveToFront(element)
		return element.Value.(*entry[K, V]).value, nil
	}
	c.put(key, v)
	return v, nil
}

// Delete removes the entry associated with key
func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if element, ok := c.elements[key]; ok {
		c.order.Remove(element)
		delete(c.elements, key)
	}
}

// Len returns the number of cached entries
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// ToMap returns the current cache entries copied into a map
func (c *LRU[K, V]) ToMap() map[K]V {
	c.mu.Lock()
	defer c.mu.Unlock()
	ret := make(map[K]V, len(c.elements))
	for k, element := range c.elements {
		ret[k] = element.Value.(*entry[K, V]).value
	}
	return ret
}
