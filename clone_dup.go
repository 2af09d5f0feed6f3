// clone_dup.go: Default lane cloner, duplicating contexts natively.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

//go:build !cryptodev_rebuild

package cryptodev

var defaultCloner contextCloner = dupCloner{}
