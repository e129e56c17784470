package object

// NewOrionObject creates a relocatable object pre-populated with the
// standard Orion++ section set:
// .orionpp.text (alloc+exec, align 16), .orionpp.data (alloc+write,
// align 8), .orionpp.bss (alloc+write, align 8), plus .symtab and
// .strtab (the latter created by New).
func NewOrionObject() *File {
	f := New(ObjTypeRelocatable, ArchNone, VariantNone)
	f.AddSection(".orionpp.text", SectionOrionppText, FlagAlloc|FlagExec, 16)
	f.AddSection(".orionpp.data", SectionOrionppData, FlagAlloc|FlagWrite, 8)
	f.AddSection(".orionpp.bss", SectionOrionppBSS, FlagAlloc|FlagWrite, 8)
	f.AddSection(".symtab", SectionSymtab, 0, 8)
	return f
}

// NewVariantObject creates an object targeting an Orion pseudo-native
// variant, e.g. ".orion.x86.text".
func NewVariantObject(variant Variant, archName string) *File {
	f := New(ObjTypeRelocatable, ArchNone, variant)
	f.AddSection(".orion."+archName+".text", SectionVariantText, FlagAlloc|FlagExec, 16)
	f.AddSection(".orion."+archName+".data", SectionVariantData, FlagAlloc|FlagWrite, 8)
	f.AddSection(".orion."+archName+".bss", SectionVariantBSS, FlagAlloc|FlagWrite, 8)
	f.AddSection(".symtab", SectionSymtab, 0, 8)
	return f
}

// NewNativeObject creates an object carrying native machine code,
// using unprefixed names.
func NewNativeObject(arch TargetArch) *File {
	f := New(ObjTypeRelocatable, arch, VariantNone)
	f.AddSection(".text", SectionNativeText, FlagAlloc|FlagExec, 16)
	f.AddSection(".data", SectionNativeData, FlagAlloc|FlagWrite, 8)
	f.AddSection(".bss", SectionNativeBSS, FlagAlloc|FlagWrite, 8)
	f.AddSection(".symtab", SectionSymtab, 0, 8)
	return f
}
