// Package query compiles and evaluates label expressions against a store
// snapshot.
//
// The language is small: a label matches the items explicitly marked YES,
// '!' before a label matches the explicit NOs, '?' before a label matches
// the items with no opinion either way, '+' is OR, '.' is AND, and
// parentheses group. Writing two operands next to each other also means AND,
// so "🥗🐈" and "🥗.🐈" are the same query. Before anything other than a
// bare label, '!' and '?' complement their operand over the whole item
// universe.
//
// Note the asymmetry this creates: "!🥗" selects the items explicitly
// marked NO, while "!(🥗)" selects everything not marked YES. The two
// differ exactly on the items where 🥗 is unset.
package query
