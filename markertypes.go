// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package acq

// markerTypeNames maps a marker's 4-character type code to the
// human-readable label AcqKnowledge shows for it. Ported from the format's
// own lookup table; codes are fixed-width and space-padded (e.g. "max ").
var markerTypeNames = map[string]string{
	"apnd": "Append",
	"defl": "Default",
	"wfon": "Waveform Onset",
	"wfof": "Waveform End",
	"nois": "Change in Signal Quality",
	"rhyt": "Change in Rhythm",
	"recv": "Recovery",
	"max ": "Maximum",
	"min ": "Minimum",
	"rset": "Reset",
	"cmlb": "Communication Lost Begin",
	"cmle": "Communication Lost End",
	"ansh": "Short Arrow",
	"anmd": "Medium Arrow",
	"anlg": "Long Arrow",
	"flag": "Flag",
	"star": "Star",
	"usr1": "User Type 1",
	"usr2": "User Type 2",
	"usr3": "User Type 3",
	"usr4": "User Type 4",
	"usr5": "User Type 5",
	"usr6": "User Type 6",
	"usr7": "User Type 7",
	"usr8": "User Type 8",
	"usr9": "User Type 9",
	"qrsb": "QRS Onset",
	"qrs ": "QRS Peak",
	"qrse": "QRS End",
	"tbeg": "T-wave Onset",
	"t   ": "T-wave Peak",
	"tend": "T-wave End",
	"pbeg": "P-wave Onset",
	"p   ": "P-wave Peak",
	"pend": "P-wave End",
	"q   ": "Q-wave Peak",
	"s   ": "S-wave Peak",
	"u   ": "U-wave Peak",
	"pq  ": "PQ Junction",
	"jpt ": "J-point",
	"stch": "ST Segment Change",
	"tch ": "T-wave Change",
	"nrml": "Normal Beat",
	"pace": "Paced Beat",
	"pfus": "Fusion of Paced and Normal Beat",
	"lbbb": "Left Bundle Branch Block Beat",
	"rbbb": "Right Bundle Branch Block Beat",
	"bbb ": "Bundle Branch Block Beat",
	"apc ": "Atrial Premature Beat",
	"aber": "Aberrated Atrial Premature Beat",
	"npc ": "Nodal Premature Beat",
	"svpb": "Supraventricular Premature Beat",
	"pvc ": "Premature Ventricular Contraction",
	"ront": "R-on-T Premature Ventricular Contraction",
	"fusi": "Fusion of Ventricular and Normal Beat",
	"aesc": "Atrial Escape Beat",
	"nesc": "Nodal Escape Beat",
	"sves": "Supraventricular Escape Beat",
	"vesc": "Ventricular Escape Beat",
	"syst": "Systole",
	"dias": "Diastole",
	"edp ": "End Diastolic Pressure",
	"aptz": "A-point",
	"bptz": "B-point",
	"cptz": "C-point",
	"xptz": "X-point",
	"yptz": "Y-point",
	"optz": "O-point",
	"plat": "Plateau",
	"upst": "Upstroke",
	"vfon": "Start of Ventricular Flutter",
	"flwa": "Ventricular Flutter Wave",
	"vfof": "End of Ventricular Flutter",
	"pesp": "Pacemaker Artifact",
	"arfc": "Isolated QRS-like Artifact",
	"napc": "Non-conducted P-wave",
	"base": "Baseline",
	"dose": "Dose",
	"wash": "Wash",
	"apon": "Spike Episode Begin",
	"apof": "Spike Episode End",
	"rein": "Inspire Start",
	"reot": "Expire Start",
	"reap": "Apnea Start",
	"stim": "Stimulus Delivery",
	"resp": "Response",
	"scr ": "Skin Conductance Response",
	"sscr": "Specific SCR",
	"ctr1": "Cluster 1",
	"ctr2": "Cluster 2",
	"ctr3": "Cluster 3",
	"ctr4": "Cluster 4",
	"ctr5": "Cluster 5",
	"ctr6": "Cluster 6",
	"ctr7": "Cluster 7",
	"ctr8": "Cluster 8",
	"ctr9": "Cluster 9",
	"ctrn": "Cluster n",
	"cend": "End Cluster",
	"outl": "Outlier",
	"tran": "Training Set",
	"cut ": "Cut",
	"vb  ": "Paste Begin",
	"ve  ": "Paste End",
	"selb": "Selection Begin",
	"sele": "Selection End",
	"steb": "Start of Eye Blink Artifact",
	"eneb": "End of Eye Blink Artifact",
	"sexc": "Start of Excursion Artifact",
	"eexc": "End of Excursion Artifact",
	"ssat": "Start of Saturation Artifact",
	"esat": "End of Saturation Artifact",
	"sspk": "Start of Spike Artifact",
	"espk": "End of Spike Artifact",
	"semg": "Start of EMG Artifact",
	"eemg": "End of EMG Artifact",
	"wles": "Workload - EMG Start",
	"wlee": "Workload - EMG End",
	"ipss": "Workload - Invalid PSD Start",
	"ipse": "Workload - Invalid PSD End",
	"ddst": "Dummy Data Start",
	"dded": "Dummy Data End",
	"idst": "Misaligned Data",
	"bprs": "Button Pressed",
	"leho": "Left Eye Hit Object",
	"reho": "Right Eye Hit Object",
	"smis": "SMI Stimulus Image Has Been Presented to the Subject",
	"mors": "Start Out of Range",
	"more": "End Out of Range",
}

// markerTypeName resolves a 4-character type code to its label, "None" for
// an absent code, or "Unknown" for one not in the table.
func markerTypeName(code string) string {
	if code == "" {
		return "None"
	}
	if name, ok := markerTypeNames[code]; ok {
		return name
	}
	return "Unknown"
}
