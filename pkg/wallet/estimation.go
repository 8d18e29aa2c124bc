package wallet

const (
	P2PKH = iota
	P2WPKH
)

// FeeEstimate is the fee for a transaction of VSize virtual bytes at FeeRate
// sat/vB.
type FeeEstimate struct {
	FeeRate uint64
	VSize   int
	Fee     uint64
}

// EstimateFee estimates the fee of a transaction spending numInputs outputs
// of the given script type and creating numOutputs outputs of the same type.
func EstimateFee(numInputs, numOutputs, scriptType int, feeRate uint64) FeeEstimate {
	inScriptTypes := make([]int, numInputs)
	outScriptTypes := make([]int, numOutputs)
	for i := range inScriptTypes {
		inScriptTypes[i] = scriptType
	}
	for i := range outScriptTypes {
		outScriptTypes[i] = scriptType
	}

	vsize := EstimateTxSize(inScriptTypes, outScriptTypes)
	return FeeEstimate{
		FeeRate: feeRate,
		VSize:   vsize,
		Fee:     uint64(vsize) * feeRate,
	}
}

// EstimateTxSize makes an estimation of the virtual size of a transaction for
// which is required to specify the type of the inputs and outputs (P2PKH or
// P2WPKH). Signatures are assumed to be 72 bytes long, that is the upper
// bound of a DER encoded signature plus the sighash byte.
// A transaction with only P2PKH inputs is 10 + 148*ins + 34*outs bytes long.
func EstimateTxSize(inScriptTypes, outScriptTypes []int) int {
	baseSize := calcTxSize(false, inScriptTypes, outScriptTypes)
	totalSize := calcTxSize(true, inScriptTypes, outScriptTypes)

	weight := baseSize*3 + totalSize
	vsize := (weight + 3) / 4

	return vsize
}

func calcTxSize(withWitness bool, inScriptTypes, outScriptTypes []int) int {
	txSize := calcTxBaseSize(inScriptTypes, outScriptTypes)
	if withWitness {
		txSize += calcTxWitnessSize(inScriptTypes)
	}
	return txSize
}

var (
	scriptSigSizeByScriptType = map[int]int{
		P2PKH:  108, // len + opcode + sig + opcode + pubkey
		P2WPKH: 1,   // no scriptsig, still len is serialized
	}
	scriptPubKeySizeByScriptType = map[int]int{
		P2PKH:  26, // len + opcodes (3) + hash(pubkey) + opcodes (2)
		P2WPKH: 23, // len + opcodes (2) + hash(pubkey)
	}
)

func calcTxBaseSize(inScriptTypes, outScriptTypes []int) int {
	// hash + index + sequence
	inBaseSize := 40
	insSize := 0
	for _, scriptType := range inScriptTypes {
		insSize += inBaseSize + scriptSigSizeByScriptType[scriptType]
	}

	// value
	outBaseSize := 8
	outsSize := 0
	for _, scriptType := range outScriptTypes {
		outsSize += outBaseSize + scriptPubKeySizeByScriptType[scriptType]
	}

	// version + locktime
	return 8 +
		varIntSerializeSize(uint64(len(inScriptTypes))) +
		varIntSerializeSize(uint64(len(outScriptTypes))) +
		insSize + outsSize
}

func calcTxWitnessSize(inScriptTypes []int) int {
	numWitnessInputs := 0
	for _, scriptType := range inScriptTypes {
		if scriptType == P2WPKH {
			numWitnessInputs++
		}
	}
	if numWitnessInputs == 0 {
		return 0
	}

	// marker + flag
	size := 2
	for _, scriptType := range inScriptTypes {
		if scriptType == P2WPKH {
			// len + witness[sig,pubkey]
			size += 1 + (1 + 72) + (1 + 33)
		} else {
			// empty witness stack
			size++
		}
	}
	return size
}
