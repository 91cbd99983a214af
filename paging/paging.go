/*
Package paging windows ordered collections for paginated views.

PURPOSE:
  Given an ordered slice and a requested page, computes the visible slice,
  the page bounds, and the page numbers a pagination control should show.
  Everything here is a pure function of its arguments.

CLAMPING:
  The requested page is clamped into [1, totalPages]. With no items there are
  zero pages, the effective page is 1 and the slice is empty.

INDEXES:
  StartIndex and EndIndex are 1-based and inclusive, ready for
  "showing 11-20 of 23" labels. PageItems covers exactly that range.

EXAMPLE:
  r := paging.Paginate(items, 3, 10) // 23 items
  // r.PageItems = items[20:23], r.StartIndex = 21, r.EndIndex = 23
  // r.HasNextPage = false, r.HasPrevPage = true

  paging.PageWindow(5, 20, 5) // [3 4 5 6 7]

SEE ALSO:
  - model/: UniqueCustomers used by UniqueCustomersPaginated
  - api/:   query parameter handling
*/
package paging

import (
	"github.com/warp/reward-points/model"
)

const (
	DefaultItemsPerPage    = 10
	DefaultMaxPagesDisplay = 5
)

// Result is one page of a collection.
type Result[T any] struct {
	PageItems   []T  `json:"pageItems"`
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	StartIndex  int  `json:"startIndex"`
	EndIndex    int  `json:"endIndex"`
}

// Paginate returns page currentPage of items. itemsPerPage below 1 falls back
// to DefaultItemsPerPage. A nil slice is treated as empty.
func Paginate[T any](items []T, currentPage, itemsPerPage int) Result[T] {
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}

	totalItems := len(items)
	totalPages := totalItems / itemsPerPage
	if totalItems%itemsPerPage != 0 {
		totalPages++
	}

	page := currentPage
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	// page <= totalPages, so start never exceeds totalItems+1.
	start := (page-1)*itemsPerPage + 1
	end := totalItems
	if itemsPerPage <= totalItems-start {
		end = start + itemsPerPage - 1
	}

	pageItems := make([]T, 0, max(end-start+1, 0))
	if end >= start {
		pageItems = append(pageItems, items[start-1:end]...)
	}

	return Result[T]{
		PageItems:   pageItems,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
		StartIndex:  start,
		EndIndex:    end,
	}
}

// PageWindow returns up to maxDisplay contiguous page numbers around
// currentPage, kept inside [1, totalPages]. Near the last page the window is
// shifted left so it stays full width when enough pages exist.
func PageWindow(currentPage, totalPages, maxDisplay int) []int {
	if totalPages <= 0 {
		return []int{}
	}
	if maxDisplay < 1 {
		maxDisplay = DefaultMaxPagesDisplay
	}

	// A window wider than totalPages, or a page outside [1, totalPages],
	// selects the same pages as the clamped value.
	maxDisplay = min(maxDisplay, totalPages)
	currentPage = min(max(currentPage, 1), totalPages)

	half := maxDisplay / 2
	start := max(1, currentPage-half)
	end := totalPages
	if maxDisplay-1 < totalPages-start {
		end = start + maxDisplay - 1
	}
	if end-start+1 < maxDisplay {
		start = max(1, end-maxDisplay+1)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// UniqueCustomersPaginated pages the distinct customers of txs, in
// first-seen order, keeping the first name seen for each id.
func UniqueCustomersPaginated(txs []model.Transaction, currentPage, itemsPerPage int) Result[model.Customer] {
	return Paginate(model.UniqueCustomers(txs), currentPage, itemsPerPage)
}
